package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/net"
)

// ctxCheckInterval is how many walk iterations pass between context checks.
const ctxCheckInterval = 4096

// Stats reports the work done by a Reducer. Counters are cumulative over
// every call made on the same Reducer.
type Stats struct {
	// Loops counts iterations of the walk (or dequeues in strict mode).
	Loops int `json:"loops"`
	// Rewrites counts applied rules, expansions included.
	Rewrites int `json:"rewrites"`
	// MaxLen is the largest number of live nodes the net ever held.
	MaxLen int `json:"max_len"`
}

// Reducer rewrites one net.
//
// Thread-safety: none. A Reducer must be driven from a single goroutine.
type Reducer struct {
	net      *net.Net
	book     *compiler.Book
	labels   net.LabelSource
	budget   budget
	logger   *slog.Logger
	observer func(Stats)
	stats    Stats

	// pending is non-nil while ReduceStrict runs; link feeds it.
	pending *pairQueue
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithMaxRewrites bounds the number of rewrites. The first rewrite past
// the bound fails with *BudgetExceededError. Zero means unbounded.
func WithMaxRewrites(n int) Option {
	return func(r *Reducer) {
		r.budget.limit = n
	}
}

// WithLabels sets the source of fresh DUP labels used by expansion.
// Defaults to the book's source.
func WithLabels(l net.LabelSource) Option {
	return func(r *Reducer) {
		r.labels = l
	}
}

// WithLogger sets the logger rule applications are reported to at Debug
// level. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reducer) {
		r.logger = l
	}
}

// WithObserver registers fn to be called with the current stats after
// every rewrite.
func WithObserver(fn func(Stats)) Option {
	return func(r *Reducer) {
		r.observer = fn
	}
}

// New creates a Reducer for n. REF nodes are expanded from book.
func New(n *net.Net, book *compiler.Book, opts ...Option) *Reducer {
	r := &Reducer{
		net:    n,
		book:   book,
		labels: book.Labels(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.stats.MaxLen = n.Peak()
	return r
}

// Net returns the net being reduced.
func (r *Reducer) Net() *net.Net { return r.net }

// Stats returns the counters accumulated so far.
func (r *Reducer) Stats() Stats {
	s := r.stats
	s.MaxLen = r.net.Peak()
	return s
}

// ReduceLazy reduces the net to weak head normal form as seen from the
// root. Calling it again on a reduced net performs no rewrites.
func (r *Reducer) ReduceLazy(ctx context.Context) (Stats, error) {
	err := r.Whnf(ctx, r.net.Root())
	stats := r.Stats()
	if err != nil {
		return stats, err
	}
	r.logger.Debug("lazy reduction done",
		"loops", stats.Loops,
		"rewrites", stats.Rewrites,
		"max_len", stats.MaxLen,
	)
	return stats, nil
}

// Whnf reduces the value seen from position start to weak head normal
// form. start is the consumer side of a wire: the port whose partner is
// the value.
//
// The walk follows the spine downward. Entering an application through its
// result, or a DUP through one of its outputs, pushes the current position
// and continues from that node's principal port. Reaching another
// principal port there is an active pair: it is rewritten and the walk
// resumes from the pushed position. The walk stops when the position
// faces a principal port with nothing pushed, a variable, or the root.
// A walk deeper than the net is cyclic and fails with ErrCodeUnstratified.
func (r *Reducer) Whnf(ctx context.Context, start net.Port) error {
	n := r.net
	prev := start
	var stack []net.Port
	for {
		r.stats.Loops++
		if r.stats.Loops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		next := n.Enter(prev)
		if next == prev {
			return net.OpenGraph(prev, "position is not wired")
		}
		id := next.Node()
		switch kind := n.Kind(id); {
		case kind == net.ROOT:
			return nil

		case kind == net.REF:
			if err := r.expand(ctx, id); err != nil {
				return err
			}

		case kind == net.CON && next.Slot() == 1:
			// a variable: the head is neutral, nothing above it can fire
			return nil

		case !next.Principal():
			stack = append(stack, prev)
			// every push enters a distinct node unless the spine loops
			if len(stack) > n.Len() {
				return newUnstratifiedError(id, len(stack), n.Len())
			}
			prev = net.MakePort(id, 0)

		case len(stack) == 0:
			return nil

		default:
			if err := r.interact(ctx, prev.Node(), id); err != nil {
				return err
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
}

// ReduceStrict rewrites every active pair of the net, in the order the
// pairs are created, until none is left. Unlike ReduceLazy it also fires
// pairs that do not contribute to the result, so it may diverge on terms
// that ReduceLazy normalizes.
func (r *Reducer) ReduceStrict(ctx context.Context) (Stats, error) {
	n := r.net
	r.pending = newPairQueue()
	defer func() { r.pending = nil }()

	for _, id := range n.Nodes() {
		r.watch(id)
	}

	for {
		p, ok := r.pending.TryDequeue()
		if !ok {
			break
		}
		r.stats.Loops++
		if r.stats.Loops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return r.Stats(), err
			}
		}
		if !r.active(p) {
			continue
		}
		if err := r.interact(ctx, p.a, p.b); err != nil {
			return r.Stats(), err
		}
	}

	stats := r.Stats()
	r.logger.Debug("strict reduction done",
		"loops", stats.Loops,
		"rewrites", stats.Rewrites,
		"max_len", stats.MaxLen,
	)
	return stats, nil
}

// watch enqueues the pair formed at id's principal port, if any. Each
// pair is reported once, from its lower id.
func (r *Reducer) watch(id int) {
	n := r.net
	if !n.Live(id) || n.Kind(id) == net.ROOT {
		return
	}
	q := n.Enter(net.MakePort(id, 0))
	if q.Principal() && q.Node() > id && n.Kind(q.Node()) != net.ROOT {
		r.pending.Enqueue(pair{a: id, b: q.Node()})
	}
}

// active reports whether p is still wired principal to principal.
func (r *Reducer) active(p pair) bool {
	n := r.net
	if !n.Live(p.a) || !n.Live(p.b) {
		return false
	}
	return n.Enter(net.MakePort(p.a, 0)) == net.MakePort(p.b, 0)
}

// link wires a and b, and in strict mode records the pair it creates.
func (r *Reducer) link(a, b net.Port) {
	r.net.Link(a, b)
	if r.pending == nil || a == b || !a.Principal() || !b.Principal() {
		return
	}
	x, y := a.Node(), b.Node()
	if r.net.Kind(x) == net.ROOT || r.net.Kind(y) == net.ROOT {
		return
	}
	if x > y {
		x, y = y, x
	}
	r.pending.Enqueue(pair{a: x, b: y})
}

// step charges one rewrite against the budget.
func (r *Reducer) step() error {
	if err := r.budget.charge(r.Stats()); err != nil {
		return err
	}
	r.stats.Rewrites++
	return nil
}

// done finishes a rewrite: refreshes the high-water mark and notifies the
// observer.
func (r *Reducer) done() {
	r.stats.MaxLen = r.net.Peak()
	if r.observer != nil {
		r.observer(r.stats)
	}
}
