package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/optimal/internal/net"
)

// interact rewrites the active pair (a, b).
//
// Dispatch order: erasers first, then REF expansion, then nodes of the
// same kind and label annihilate and everything else commutes.
func (r *Reducer) interact(ctx context.Context, a, b int) error {
	n := r.net
	ka, kb := n.Kind(a), n.Kind(b)
	if ka == net.ROOT || kb == net.ROOT {
		return net.PortViolation(net.MakePort(a, 0), "ROOT in an active pair with node %d", b)
	}

	if kb == net.ERA && ka != net.ERA {
		a, b = b, a
		ka, kb = kb, ka
	}
	if ka == net.ERA {
		if err := r.step(); err != nil {
			return err
		}
		switch kb {
		case net.ERA, net.REF:
			r.trace(ctx, "void", a, b)
			n.Free(a)
			n.Free(b)
		default:
			r.trace(ctx, "erase", a, b)
			r.erase(a, b)
		}
		r.done()
		return nil
	}

	if ka == net.REF {
		return r.expand(ctx, a)
	}
	if kb == net.REF {
		return r.expand(ctx, b)
	}

	if err := r.step(); err != nil {
		return err
	}
	if ka == kb && n.Label(a) == n.Label(b) {
		r.trace(ctx, "annihilate", a, b)
		r.annihilate(a, b)
	} else {
		r.trace(ctx, "commute", a, b)
		r.commute(a, b)
	}
	r.done()
	return nil
}

// annihilate joins the auxiliary ports of a and b pairwise and removes
// both nodes. The i-th neighbour of a is wired to the i-th neighbour of b.
func (r *Reducer) annihilate(a, b int) {
	n := r.net
	for s := 1; s < n.Kind(a).Arity(); s++ {
		r.link(n.Enter(net.MakePort(a, s)), n.Enter(net.MakePort(b, s)))
	}
	n.Free(a)
	n.Free(b)
}

// commute lets a and b pass through each other. Each is copied twice and
// the copies keep the original's kind and label:
//
//	b1.0 - a.1's neighbour     a1.0 - b.1's neighbour
//	b2.0 - a.2's neighbour     a2.0 - b.2's neighbour
//	a1.1 - b1.1   a1.2 - b2.1   a2.1 - b1.2   a2.2 - b2.2
func (r *Reducer) commute(a, b int) {
	n := r.net
	ka, la := n.Kind(a), n.Label(a)
	kb, lb := n.Kind(b), n.Label(b)
	a1, a2 := n.Alloc(ka, la), n.Alloc(ka, la)
	b1, b2 := n.Alloc(kb, lb), n.Alloc(kb, lb)

	r.link(net.MakePort(b1, 0), n.Enter(net.MakePort(a, 1)))
	r.link(net.MakePort(b2, 0), n.Enter(net.MakePort(a, 2)))
	r.link(net.MakePort(a1, 0), n.Enter(net.MakePort(b, 1)))
	r.link(net.MakePort(a2, 0), n.Enter(net.MakePort(b, 2)))

	r.link(net.MakePort(a1, 1), net.MakePort(b1, 1))
	r.link(net.MakePort(a1, 2), net.MakePort(b2, 1))
	r.link(net.MakePort(a2, 1), net.MakePort(b1, 2))
	r.link(net.MakePort(a2, 2), net.MakePort(b2, 2))

	n.Free(a)
	n.Free(b)
}

// erase removes x, which faces the eraser e, and caps each of x's
// auxiliary neighbours with a fresh eraser.
func (r *Reducer) erase(e, x int) {
	n := r.net
	for s := 1; s < n.Kind(x).Arity(); s++ {
		eraser := n.Alloc(net.ERA, 0)
		r.link(net.MakePort(eraser, 0), n.Enter(net.MakePort(x, s)))
	}
	n.Free(e)
	n.Free(x)
}

// expand replaces REF node id with a fresh copy of its definition.
func (r *Reducer) expand(ctx context.Context, id int) error {
	n := r.net
	name := n.Name(id)
	tpl, err := r.book.Template(name)
	if err != nil {
		return newUnboundError(id, name, err)
	}
	if err := r.step(); err != nil {
		return err
	}
	r.trace(ctx, "expand", id, -1, slog.String("ref", name))

	p, ids := tpl.InstantiateNodes(n, r.labels)
	r.link(n.Enter(net.MakePort(id, 0)), p)
	n.Free(id)
	if r.pending != nil {
		for _, nid := range ids {
			r.watch(nid)
		}
	}
	r.done()
	return nil
}

func (r *Reducer) trace(ctx context.Context, rule string, a, b int, extra ...slog.Attr) {
	if !r.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []slog.Attr{
		slog.String("rule", rule),
		slog.Int("a", a),
		slog.String("a_kind", r.net.Kind(a).String()),
	}
	if b >= 0 {
		attrs = append(attrs,
			slog.Int("b", b),
			slog.String("b_kind", r.net.Kind(b).String()),
		)
	}
	attrs = append(attrs, extra...)
	attrs = append(attrs, slog.Int("rewrites", r.stats.Rewrites))
	r.logger.LogAttrs(ctx, slog.LevelDebug, "rewrite", attrs...)
}
