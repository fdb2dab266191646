// Package net holds interaction nets: an arena of typed nodes whose ports
// are joined pairwise by wires.
//
// A node has a kind (ROOT, CON, DUP, ERA or REF), a label and up to three
// ports. Slot 0 is the principal port; slots 1 and 2 are auxiliary. Wires
// are symmetric: Enter(Enter(p)) == p for every live port p. Nodes are
// addressed by small integer ids; freed ids go to a free list and are
// reused by later allocations.
//
// A Net is mutated by a single goroutine at a time and does no locking.
// Mutators do not validate their arguments; Check performs the full
// integrity scan.
package net
