package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// mustDefs parses a set of mutually visible definitions.
func mustDefs(t *testing.T, srcs map[string]string) Defs {
	t.Helper()
	defs := make(Defs, len(srcs))
	for name := range srcs {
		defs[name] = nil
	}
	for name, src := range srcs {
		tm, err := Parse(src, DefsResolver(defs))
		require.NoError(t, err, name)
		defs[name] = tm
	}
	return defs
}

var prelude = map[string]string{
	"id":    `\x. x`,
	"true":  `\t f. t`,
	"false": `\t f. f`,
	"not":   `\b t f. b f t`,
	"two":   `\f x. f (f x)`,
	"three": `\f x. f (f (f x))`,
	"mul":   `\m n f. m (n f)`,
	"add":   `\m n f x. m f (n f x)`,
	"main":  `id true`,
	"loop":  `\x. loop x`,
}
