package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/optimal/internal/term"
)

func TestPreludeParses(t *testing.T) {
	defs := MustDefs(t, Prelude)
	assert.Len(t, defs, len(Prelude))
	for _, name := range defs.Names() {
		assert.NoError(t, term.CheckClosed(defs[name], defs), name)
	}
}

func TestChurch(t *testing.T) {
	defs := MustDefs(t, Prelude)
	assert.True(t, term.Equal(defs["zero"], Church(0)))
	assert.True(t, term.Equal(defs["three"], Church(3)))
	assert.Equal(t, "λf x. f (f x)", term.Show(Church(2)))
}
