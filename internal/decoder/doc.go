// Package decoder reads a reduced net back as a λ-term.
//
// Reading starts at the root and proceeds position by position. Before a
// position is classified its value is forced to weak head normal form, so
// a net that ReduceLazy left partly unreduced is reduced exactly as far as
// the printed result needs.
//
// Shared values are read through DUP nodes. Passing a DUP from one of its
// outputs to its principal records which output was taken; meeting a DUP
// of the same label at its principal port later (a fan-in) consumes that
// record and continues through the matching input. The records form a
// stack per label, and the traversal is an explicit work-list, so deep
// terms do not grow the goroutine stack.
package decoder
