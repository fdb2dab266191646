package net

import (
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Net is an arena of nodes plus the root anchor.
type Net struct {
	nodes []node
	free  []int
	root  int
	live  int
	peak  int
}

// New returns a net holding only its ROOT node, whose port is wired to
// itself until an encoder links a term to it.
func New() *Net {
	n := &Net{}
	n.root = n.Alloc(ROOT, 0)
	return n
}

// Alloc creates a node of kind with label. Every port of the new node is
// wired to itself.
func (n *Net) Alloc(kind Kind, label uint64) int {
	var id int
	if k := len(n.free); k > 0 {
		id = n.free[k-1]
		n.free = n.free[:k-1]
	} else {
		id = len(n.nodes)
		n.nodes = append(n.nodes, node{})
	}
	nd := &n.nodes[id]
	*nd = node{kind: kind, live: true, label: label}
	for s := 0; s < kind.Arity(); s++ {
		nd.ports[s] = MakePort(id, s)
	}
	if kind != ROOT {
		n.live++
		if n.live > n.peak {
			n.peak = n.live
		}
	}
	return id
}

// AllocRef creates a REF node naming a global definition.
func (n *Net) AllocRef(name string) int {
	id := n.Alloc(REF, 0)
	n.nodes[id].name = name
	return id
}

// Free releases id. Its wires are not touched; the caller must already
// have relinked every neighbour.
func (n *Net) Free(id int) {
	nd := &n.nodes[id]
	if !nd.live {
		return
	}
	if nd.kind != ROOT {
		n.live--
	}
	*nd = node{}
	n.free = append(n.free, id)
}

// Link wires a and b together. Linking a port to itself leaves it open.
func (n *Net) Link(a, b Port) {
	n.nodes[a.Node()].ports[a.Slot()] = b
	n.nodes[b.Node()].ports[b.Slot()] = a
}

// Enter returns the port wired to p.
func (n *Net) Enter(p Port) Port {
	return n.nodes[p.Node()].ports[p.Slot()]
}

// Root is the port of the ROOT node.
func (n *Net) Root() Port { return MakePort(n.root, 0) }

// Kind returns the kind of node id.
func (n *Net) Kind(id int) Kind { return n.nodes[id].kind }

// Label returns the label of node id. CON, ERA and REF nodes carry 0.
func (n *Net) Label(id int) uint64 { return n.nodes[id].label }

// Name returns the definition name of a REF node.
func (n *Net) Name(id int) string { return n.nodes[id].name }

// Live reports whether id names an allocated node.
func (n *Net) Live(id int) bool {
	return id >= 0 && id < len(n.nodes) && n.nodes[id].live
}

// Len is the number of live nodes, not counting ROOT.
func (n *Net) Len() int { return n.live }

// Peak is the largest Len observed since the net was created.
func (n *Net) Peak() int { return n.peak }

// Nodes returns the ids of all live nodes, ROOT included, in id order.
func (n *Net) Nodes() []int {
	ids := make([]int, 0, n.live+1)
	for id := range n.nodes {
		if n.nodes[id].live {
			ids = append(ids, id)
		}
	}
	return ids
}

// Labels counts live DUP nodes per label.
func (n *Net) Labels() map[uint64]int {
	out := make(map[uint64]int)
	for id := range n.nodes {
		if nd := &n.nodes[id]; nd.live && nd.kind == DUP {
			out[nd.label]++
		}
	}
	return out
}

// Check scans every live port and verifies that the wiring is a perfect
// matching: each port of arity has exactly one partner, the partner is a
// live port of arity, and the partner points back.
func (n *Net) Check() error {
	for id := range n.nodes {
		nd := &n.nodes[id]
		if !nd.live {
			continue
		}
		for s := 0; s < nd.kind.Arity(); s++ {
			p := MakePort(id, s)
			q := nd.ports[s]
			if q == p {
				return OpenGraph(p, "%s port is wired to itself", nd.kind)
			}
			if !n.Live(q.Node()) {
				return PortViolation(p, "wired to freed node %d", q.Node())
			}
			if q.Slot() >= n.nodes[q.Node()].kind.Arity() {
				return PortViolation(p, "wired to slot %d of %s node %d", q.Slot(), n.nodes[q.Node()].kind, q.Node())
			}
			if n.Enter(q) != p {
				return PortViolation(p, "partner %s points to %s", q, n.Enter(q))
			}
		}
	}
	return nil
}

// Reachable counts the non-ROOT nodes connected to the root by any path.
// After a well-formed reduction it equals Len.
func (n *Net) Reachable() int {
	seen := hashset.New()
	stack := arraystack.New()
	stack.Push(n.root)
	seen.Add(n.root)
	for !stack.Empty() {
		top, _ := stack.Pop()
		id := top.(int)
		nd := &n.nodes[id]
		for s := 0; s < nd.kind.Arity(); s++ {
			next := nd.ports[s].Node()
			if !seen.Contains(next) && n.Live(next) {
				seen.Add(next)
				stack.Push(next)
			}
		}
	}
	return seen.Size() - 1
}
