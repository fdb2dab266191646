// Package engine reduces interaction nets.
//
// A Reducer owns one net for the duration of a run. It rewrites active
// pairs (two nodes wired principal to principal) with four rules:
//
//	annihilate  CON-CON, DUP-DUP with equal labels, ERA-ERA
//	commute     CON-DUP, DUP-DUP with different labels
//	erase       ERA meets anything else
//	expand      a REF reached at its principal port becomes a copy of
//	            its definition's template
//
// ReduceLazy walks the spine from the root and only fires the pairs that
// stand between the root and a weak head normal form. Whnf runs the same
// walk from any position and is what the decoder calls to force a
// subterm before reading it. ReduceStrict fires every active pair in FIFO
// order until none are left.
//
// Commutation copies keep the label of the node they copy, so the two
// copies of a DUP can meet and annihilate later. Fresh labels come only from
// the encoder and from REF expansion.
//
// Sharing is decided by label equality alone. That is sound for stratified
// terms. Outside that class a walk may come back to its own fan, which is
// reported as ErrCodeUnstratified.
//
// Mutation is single-threaded: a Reducer and its net must not be shared
// between goroutines. The DUP label counter is the only state shared
// across nets and is atomic.
//
// Every rewrite is charged against an optional budget (WithMaxRewrites).
// When the budget runs out the walk stops with *BudgetExceededError and
// the net is left in whatever state the last completed rewrite produced.
package engine
