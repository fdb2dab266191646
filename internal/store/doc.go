// Package store provides the SQLite-backed module cache and run history.
//
// Modules are stored by content hash (see ir.ModuleHash), so saving the
// same module twice is a no-op and two different modules never collide.
// Each stored module keeps the CUE source it can be written back as, its
// printed definitions, and the hashes of the modules it imports. The
// import table answers "which modules cite this one".
//
// Runs record the statistics of evaluations: target, mode, loops,
// rewrites, max_len, the printed result and its term hash.
//
// # Ordering
//
// Every table carries a seq column assigned on insert. Reads order by
// seq, then by key with COLLATE BINARY, so listings are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: Imports must reference stored modules
package store
