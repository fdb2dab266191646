package decoder

import (
	"context"
	"strconv"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
)

// Forcer reduces the value at a position to weak head normal form.
// *engine.Reducer implements it.
type Forcer interface {
	Whnf(ctx context.Context, pos net.Port) error
}

// Decompile reads the term rooted at n's root port.
//
// With a nil forcer nothing is reduced: active pairs left in the net are
// read as redexes and unexpanded REF nodes as term.Ref. With a forcer,
// every position is forced first and reaching a REF is an OpenGraph error.
func Decompile(ctx context.Context, n *net.Net, f Forcer) (term.Term, error) {
	d := &decoder{n: n, force: f}
	return d.run(ctx)
}

// exits is a persistent list of DUP outputs taken on the way down,
// most recent first.
type exits struct {
	label uint64
	slot  int
	next  *exits
}

// take removes the most recent exit carrying label.
func (e *exits) take(label uint64) (int, *exits, bool) {
	var skipped []*exits
	for cur := e; cur != nil; cur = cur.next {
		if cur.label != label {
			skipped = append(skipped, cur)
			continue
		}
		rest := cur.next
		for i := len(skipped) - 1; i >= 0; i-- {
			rest = &exits{label: skipped[i].label, slot: skipped[i].slot, next: rest}
		}
		return cur.slot, rest, true
	}
	return 0, e, false
}

// scope is a persistent list of the abstractions enclosing a position,
// innermost first.
type scope struct {
	lam   int
	name  string
	depth int
	next  *scope
}

func (s *scope) push(lam int) *scope {
	depth := 0
	if s != nil {
		depth = s.depth + 1
	}
	return &scope{lam: lam, name: binderName(depth), depth: depth, next: s}
}

// index is the de Bruijn index of the variable bound by lam.
func (s *scope) index(lam int) (int, string, bool) {
	i := 0
	for cur := s; cur != nil; cur = cur.next {
		if cur.lam == lam {
			return i, cur.name, true
		}
		i++
	}
	return 0, "", false
}

// binderName names binders by depth: a, b, ..., z, a1, b1, ...
func binderName(depth int) string {
	name := string(rune('a' + depth%26))
	if depth >= 26 {
		name += strconv.Itoa(depth / 26)
	}
	return name
}

type frameKind int

const (
	frameVisit    frameKind = iota // force pos, then classify its partner
	frameClassify                  // classify port without forcing
	frameLam                       // pop body, push λ
	frameApp                       // pop argument and function, push application
)

type frame struct {
	kind  frameKind
	port  net.Port
	exits *exits
	scope *scope
	name  string
}

type decoder struct {
	n     *net.Net
	force Forcer
	work  *arraystack.Stack
	out   []term.Term
}

func (d *decoder) run(ctx context.Context) (term.Term, error) {
	d.work = arraystack.New()
	d.work.Push(frame{kind: frameVisit, port: d.n.Root()})
	for !d.work.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top, _ := d.work.Pop()
		f := top.(frame)
		var err error
		switch f.kind {
		case frameVisit:
			err = d.visit(ctx, f)
		case frameClassify:
			err = d.classify(f)
		case frameLam:
			body := d.pop()
			d.out = append(d.out, term.Lam{Name: f.name, Body: body})
		case frameApp:
			arg := d.pop()
			fun := d.pop()
			d.out = append(d.out, term.App{Func: fun, Argm: arg})
		}
		if err != nil {
			return nil, err
		}
	}
	if len(d.out) != 1 {
		return nil, net.PortViolation(d.n.Root(), "read back %d terms", len(d.out))
	}
	return d.out[0], nil
}

func (d *decoder) pop() term.Term {
	t := d.out[len(d.out)-1]
	d.out = d.out[:len(d.out)-1]
	return t
}

func (d *decoder) visit(ctx context.Context, f frame) error {
	if d.force != nil {
		if err := d.force.Whnf(ctx, f.port); err != nil {
			return err
		}
	}
	p := d.n.Enter(f.port)
	if p == f.port {
		return net.OpenGraph(f.port, "position is not wired")
	}
	return d.classify(frame{kind: frameClassify, port: p, exits: f.exits, scope: f.scope})
}

// classify reads the value whose producing port is f.port.
func (d *decoder) classify(f frame) error {
	n := d.n
	id := f.port.Node()
	switch n.Kind(id) {
	case net.CON:
		switch f.port.Slot() {
		case 0:
			sc := f.scope.push(id)
			d.work.Push(frame{kind: frameLam, name: sc.name})
			d.work.Push(frame{kind: frameVisit, port: net.MakePort(id, 2), exits: f.exits, scope: sc})
		case 1:
			i, name, ok := f.scope.index(id)
			if !ok {
				return net.OpenGraph(f.port, "variable of abstraction %d read outside its body", id)
			}
			d.out = append(d.out, term.Var{Index: i, Name: name})
		default:
			d.work.Push(frame{kind: frameApp})
			d.work.Push(frame{kind: frameVisit, port: net.MakePort(id, 1), exits: f.exits, scope: f.scope})
			d.work.Push(frame{kind: frameClassify, port: n.Enter(net.MakePort(id, 0)), exits: f.exits, scope: f.scope})
		}
		return nil

	case net.DUP:
		label := n.Label(id)
		if f.port.Slot() != 0 {
			ex := &exits{label: label, slot: f.port.Slot(), next: f.exits}
			d.work.Push(frame{kind: frameClassify, port: n.Enter(net.MakePort(id, 0)), exits: ex, scope: f.scope})
			return nil
		}
		slot, rest, ok := f.exits.take(label)
		if !ok {
			return net.OpenGraph(f.port, "DUP %d (label %d) entered at its principal with no matching exit", id, label)
		}
		d.work.Push(frame{kind: frameVisit, port: net.MakePort(id, slot), exits: rest, scope: f.scope})
		return nil

	case net.REF:
		if d.force == nil {
			d.out = append(d.out, term.Ref{Name: n.Name(id)})
			return nil
		}
		return net.OpenGraph(f.port, "unexpanded reference %s in a forced position", n.Name(id))

	default:
		return net.OpenGraph(f.port, "%s node %d where a term was expected", n.Kind(id), id)
	}
}
