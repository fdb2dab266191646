package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/optimal/internal/term"
)

// Prelude is a small library of Church encodings shared by tests.
var Prelude = map[string]string{
	"id":    `\x. x`,
	"const": `\x y. x`,
	"true":  `\t f. t`,
	"false": `\t f. f`,
	"not":   `\b t f. b f t`,
	"and":   `\p q. p q p`,
	"or":    `\p q. p p q`,
	"zero":  `\f x. x`,
	"one":   `\f x. f x`,
	"two":   `\f x. f (f x)`,
	"three": `\f x. f (f (f x))`,
	"succ":  `\n f x. f (n f x)`,
	"add":   `\m n f x. m f (n f x)`,
	"mul":   `\m n f. m (n f)`,
	"pow":   `\m n. n m`,
	"pair":  `\a b k. k a b`,
	"fst":   `\p. p \a b. a`,
	"snd":   `\p. p \a b. b`,
	"main":  `id true`,
	"loop":  `\x. loop x`,
}

// MustDefs parses mutually visible definitions. Every key is in scope in
// every source.
func MustDefs(t testing.TB, srcs map[string]string) term.Defs {
	t.Helper()
	defs := make(term.Defs, len(srcs))
	for name := range srcs {
		defs[name] = nil
	}
	for name, src := range srcs {
		tm, err := term.Parse(src, term.DefsResolver(defs))
		require.NoError(t, err, "parsing %s", name)
		defs[name] = tm
	}
	return defs
}

// MustTerm parses src with the definitions of defs in scope.
func MustTerm(t testing.TB, src string, defs term.Defs) term.Term {
	t.Helper()
	tm, err := term.Parse(src, term.DefsResolver(defs))
	require.NoError(t, err, "parsing %q", src)
	return tm
}

// Church returns the Church numeral for k.
func Church(k int) term.Term {
	var body term.Term = term.Var{Index: 0, Name: "x"}
	for i := 0; i < k; i++ {
		body = term.App{Func: term.Var{Index: 1, Name: "f"}, Argm: body}
	}
	return term.Lam{Name: "f", Body: term.Lam{Name: "x", Body: body}}
}
