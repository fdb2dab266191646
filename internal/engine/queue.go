package engine

// pair is an active pair: two nodes wired principal to principal.
type pair struct {
	a, b int
}

// pairQueue is the FIFO of active pairs waiting to be rewritten by the
// strict reducer.
//
// A pair is enqueued when the wire that creates it is made. By the time it
// is dequeued one of its nodes may already have been consumed by an
// earlier rewrite, so the consumer re-checks the wire before acting.
type pairQueue struct {
	pairs []pair
}

// newPairQueue creates an empty pair queue.
func newPairQueue() *pairQueue {
	return &pairQueue{
		pairs: make([]pair, 0, 64),
	}
}

// Enqueue adds a pair to the back of the queue.
func (q *pairQueue) Enqueue(p pair) {
	q.pairs = append(q.pairs, p)
}

// TryDequeue removes and returns the front pair.
// Returns (pair{}, false) if the queue is empty.
func (q *pairQueue) TryDequeue() (pair, bool) {
	if len(q.pairs) == 0 {
		return pair{}, false
	}
	p := q.pairs[0]
	if len(q.pairs) == 1 {
		q.pairs = q.pairs[:0]
	} else {
		q.pairs = q.pairs[1:]
	}
	return p, true
}

// Len returns the current queue length.
func (q *pairQueue) Len() int {
	return len(q.pairs)
}
