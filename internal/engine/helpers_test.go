package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/net"
	"github.com/roach88/optimal/internal/term"
	"github.com/roach88/optimal/internal/testutil"
)

func newTestBook(t *testing.T) *compiler.Book {
	t.Helper()
	defs := testutil.MustDefs(t, testutil.Prelude)
	return compiler.NewBook(defs, compiler.WithLabels(testutil.NewDeterministicLabels()))
}

// compileTerm parses src against the book's definitions and encodes it.
func compileTerm(t *testing.T, book *compiler.Book, src string) *net.Net {
	t.Helper()
	tm := testutil.MustTerm(t, src, book.Defs())
	n, err := compiler.Compile(tm, book)
	require.NoError(t, err)
	return n
}

func compileRef(t *testing.T, book *compiler.Book, name string) *net.Net {
	t.Helper()
	n, err := compiler.Compile(term.Ref{Name: name}, book)
	require.NoError(t, err)
	return n
}
