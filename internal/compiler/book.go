package compiler

import (
	"fmt"
	"sync"

	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
)

// Book holds the global definitions of a run and a template cache keyed
// by definition name. A Book is passed explicitly to the encoder and the
// reducer; there is no package-level state besides the label counter.
type Book struct {
	defs   term.Defs
	labels net.LabelSource

	mu        sync.Mutex
	templates map[string]*Template
	stats     BookStats
}

// BookStats counts template cache activity.
type BookStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithLabels sets the label source used for encoding and expansion.
// Defaults to net.GlobalLabels.
func WithLabels(l net.LabelSource) BookOption {
	return func(b *Book) {
		b.labels = l
	}
}

// NewBook creates a Book over defs.
func NewBook(defs term.Defs, opts ...BookOption) *Book {
	b := &Book{
		defs:      defs,
		labels:    net.GlobalLabels,
		templates: make(map[string]*Template),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Defs returns the definitions the book was built from.
func (b *Book) Defs() term.Defs { return b.defs }

// Labels returns the book's label source.
func (b *Book) Labels() net.LabelSource { return b.labels }

// Stats returns a snapshot of the cache counters.
func (b *Book) Stats() BookStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Template returns the compiled template of name, compiling it on first
// use.
func (b *Book) Template(name string) (*Template, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tpl, ok := b.templates[name]; ok {
		b.stats.Hits++
		return tpl, nil
	}
	b.stats.Misses++
	def, err := b.defs.Lookup(name)
	if err != nil {
		return nil, err
	}
	tpl, err := buildTemplate(name, def, b.defs)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	b.templates[name] = tpl
	return tpl, nil
}

// Template is a compiled definition that can be copied into any net.
// Node i of the template is described by nodes[i]; its ports name partner
// slots by template index. The port wired to the outside is recorded in
// root and left self-wired in nodes.
type Template struct {
	Name  string
	nodes []tplNode
	root  net.Port
}

type tplNode struct {
	kind  net.Kind
	label uint64
	name  string
	ports [3]net.Port
}

// Len is the number of nodes one instantiation allocates.
func (t *Template) Len() int { return len(t.nodes) }

// buildTemplate encodes def into a scratch net with local labels and
// renumbers its nodes densely.
func buildTemplate(name string, def term.Term, defs term.Defs) (*Template, error) {
	scratch := net.New()
	p, err := encode(scratch, def, defs, net.NewClock())
	if err != nil {
		return nil, err
	}
	scratch.Link(scratch.Root(), p)

	index := make(map[int]int)
	var ids []int
	for _, id := range scratch.Nodes() {
		if scratch.Kind(id) == net.ROOT {
			continue
		}
		index[id] = len(ids)
		ids = append(ids, id)
	}

	tpl := &Template{Name: name, nodes: make([]tplNode, len(ids))}
	root := scratch.Root().Node()
	for i, id := range ids {
		kind := scratch.Kind(id)
		tn := tplNode{kind: kind, label: scratch.Label(id), name: scratch.Name(id)}
		for s := 0; s < kind.Arity(); s++ {
			self := net.MakePort(i, s)
			partner := scratch.Enter(net.MakePort(id, s))
			if partner.Node() == root {
				tpl.root = self
				tn.ports[s] = self
				continue
			}
			tn.ports[s] = net.MakePort(index[partner.Node()], partner.Slot())
		}
		tpl.nodes[i] = tn
	}
	return tpl, nil
}

// Instantiate copies the template into n and returns the open port that
// carries the definition's value. Every distinct DUP label of the
// template is replaced by a fresh label from labels.
func (t *Template) Instantiate(n *net.Net, labels net.LabelSource) net.Port {
	p, _ := t.InstantiateNodes(n, labels)
	return p
}

// InstantiateNodes is Instantiate that also returns the ids of the nodes
// it allocated, in template order.
func (t *Template) InstantiateNodes(n *net.Net, labels net.LabelSource) (net.Port, []int) {
	ids := make([]int, len(t.nodes))
	fresh := make(map[uint64]uint64)
	for i, tn := range t.nodes {
		switch tn.kind {
		case net.REF:
			ids[i] = n.AllocRef(tn.name)
		case net.DUP:
			l, ok := fresh[tn.label]
			if !ok {
				l = labels.Next()
				fresh[tn.label] = l
			}
			ids[i] = n.Alloc(net.DUP, l)
		default:
			ids[i] = n.Alloc(tn.kind, tn.label)
		}
	}
	for i, tn := range t.nodes {
		for s := 0; s < tn.kind.Arity(); s++ {
			q := tn.ports[s]
			n.Link(net.MakePort(ids[i], s), net.MakePort(ids[q.Node()], q.Slot()))
		}
	}
	return net.MakePort(ids[t.root.Node()], t.root.Slot()), ids
}
