package net

import "fmt"

// Kind is the type of a node.
type Kind uint8

const (
	// ROOT anchors the net. Its single port faces the term's value.
	ROOT Kind = iota
	// CON is a constructor: an abstraction or an application.
	CON
	// DUP is a duplicator that shares a value between two consumers.
	DUP
	// ERA is an eraser.
	ERA
	// REF is an unexpanded reference to a global definition.
	REF
)

var kindNames = [...]string{"ROOT", "CON", "DUP", "ERA", "REF"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Arity is the number of ports a node of kind k has.
func (k Kind) Arity() int {
	switch k {
	case CON, DUP:
		return 3
	default:
		return 1
	}
}

// Port addresses one slot of one node. It packs the node id and the slot
// so that ports can be stored and compared as plain integers.
type Port uint64

// MakePort builds the port for slot of node id.
func MakePort(id, slot int) Port {
	return Port(uint64(id)<<2 | uint64(slot&3))
}

// Node returns the id of the node the port belongs to.
func (p Port) Node() int { return int(p >> 2) }

// Slot returns the slot index; 0 is the principal port.
func (p Port) Slot() int { return int(p & 3) }

// Principal reports whether p is slot 0.
func (p Port) Principal() bool { return p&3 == 0 }

func (p Port) String() string {
	return fmt.Sprintf("%d.%d", p.Node(), p.Slot())
}

type node struct {
	kind  Kind
	live  bool
	label uint64
	name  string
	ports [3]Port
}
