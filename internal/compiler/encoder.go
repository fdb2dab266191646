package compiler

import (
	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
)

// Compile encodes t into a new net whose root port faces t's value.
// Every Ref in t must name a definition of the book; free variables and
// missing definitions fail with *term.UnboundError.
func Compile(t term.Term, b *Book) (*net.Net, error) {
	n := net.New()
	p, err := encode(n, t, b.defs, b.labels)
	if err != nil {
		return nil, err
	}
	n.Link(n.Root(), p)
	return n, nil
}

// encode writes t into n and returns the port that carries its value.
// The returned port is still open; the caller links it.
func encode(n *net.Net, t term.Term, defs term.Defs, labels net.LabelSource) (net.Port, error) {
	e := &encoder{n: n, defs: defs, labels: labels}
	return e.build(t)
}

type encoder struct {
	n      *net.Net
	defs   term.Defs
	labels net.LabelSource
	// vars holds the variable port of each enclosing abstraction,
	// innermost last.
	vars []net.Port
}

func (e *encoder) build(t term.Term) (net.Port, error) {
	switch t := t.(type) {
	case term.Var:
		return e.occurrence(t)

	case term.Lam:
		lam := e.n.Alloc(net.CON, 0)
		e.vars = append(e.vars, net.MakePort(lam, 1))
		body, err := e.build(t.Body)
		e.vars = e.vars[:len(e.vars)-1]
		if err != nil {
			return 0, err
		}
		e.n.Link(net.MakePort(lam, 2), body)
		if v := net.MakePort(lam, 1); e.n.Enter(v) == v {
			era := e.n.Alloc(net.ERA, 0)
			e.n.Link(net.MakePort(era, 0), v)
		}
		return net.MakePort(lam, 0), nil

	case term.App:
		app := e.n.Alloc(net.CON, 0)
		fun, err := e.build(t.Func)
		if err != nil {
			return 0, err
		}
		e.n.Link(net.MakePort(app, 0), fun)
		arg, err := e.build(t.Argm)
		if err != nil {
			return 0, err
		}
		e.n.Link(net.MakePort(app, 1), arg)
		return net.MakePort(app, 2), nil

	case term.Ref:
		if _, ok := e.defs[t.Name]; !ok {
			return 0, &term.UnboundError{Name: t.Name}
		}
		return net.MakePort(e.n.AllocRef(t.Name), 0), nil

	default:
		return 0, &term.UnboundError{Name: "?"}
	}
}

// occurrence hands out the variable port of the binder on first use. Each
// later use splices a DUP between the binder and the previous consumer, so
// n uses build a chain of n-1 DUPs.
func (e *encoder) occurrence(v term.Var) (net.Port, error) {
	if v.Index < 0 || v.Index >= len(e.vars) {
		return 0, &term.UnboundError{Name: v.Name, Free: true}
	}
	binder := e.vars[len(e.vars)-1-v.Index]
	prev := e.n.Enter(binder)
	if prev == binder {
		return binder, nil
	}
	dup := e.n.Alloc(net.DUP, e.labels.Next())
	e.n.Link(net.MakePort(dup, 0), binder)
	e.n.Link(net.MakePort(dup, 1), prev)
	return net.MakePort(dup, 2), nil
}
