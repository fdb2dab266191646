package engine

import (
	"context"
	"fmt"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/decoder"
	"github.com/roach88/optimal/internal/term"
)

// Normalize compiles t, reduces it lazily and reads the normal form back,
// forcing every subterm the read-back reaches. Stats cover the whole run,
// read-back included.
//
// When weak is set the read-back does not force anything, so the result
// is the weak head normal form with unexpanded definitions shown by name.
func Normalize(ctx context.Context, t term.Term, book *compiler.Book, weak bool, opts ...Option) (term.Term, Stats, error) {
	n, err := compiler.Compile(t, book)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("compile: %w", err)
	}
	r := New(n, book, opts...)
	if _, err := r.ReduceLazy(ctx); err != nil {
		return nil, r.Stats(), err
	}
	var f decoder.Forcer = r
	if weak {
		f = nil
	}
	out, err := decoder.Decompile(ctx, n, f)
	if err != nil {
		return nil, r.Stats(), err
	}
	return out, r.Stats(), nil
}
