package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	assert.Equal(t, 1, Size(Ref{Name: "a"}))
	assert.Equal(t, 2, Size(Lam{Body: Var{}}))
	assert.Equal(t, 4, Size(MustParse(`\x. x x`, NoGlobals)))
}

func TestEqualIgnoresNames(t *testing.T) {
	a := MustParse(`\x y. x`, NoGlobals)
	b := MustParse(`\t f. t`, NoGlobals)
	c := MustParse(`\t f. f`, NoGlobals)
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(Ref{Name: "a"}, Ref{Name: "b"}))
	assert.False(t, Equal(Lam{Body: Var{}}, App{Func: Var{}, Argm: Var{}}))
}

func TestRefs(t *testing.T) {
	defs := mustDefs(t, prelude)
	assert.Equal(t, []string{"id", "true"}, Refs(defs["main"]))
	assert.Equal(t, []string{"loop"}, Refs(defs["loop"]))
	assert.Empty(t, Refs(defs["two"]))
}

func TestCheckClosed(t *testing.T) {
	defs := mustDefs(t, prelude)
	require.NoError(t, CheckClosed(defs["main"], defs))

	err := CheckClosed(Lam{Body: Var{Index: 1, Name: "y"}}, defs)
	var ue *UnboundError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Free)
	assert.Equal(t, "y", ue.Name)

	err = CheckClosed(Ref{Name: "missing"}, defs)
	require.ErrorAs(t, err, &ue)
	assert.False(t, ue.Free)
}

func TestDefsLookup(t *testing.T) {
	defs := mustDefs(t, prelude)
	_, err := defs.Lookup("id")
	require.NoError(t, err)
	_, err = defs.Lookup("nope")
	assert.True(t, IsUnbound(err))
	assert.Equal(t, "add", defs.Names()[0])
}

func TestHashIsAlphaInvariant(t *testing.T) {
	a, err := Hash(MustParse(`\x y. y x`, NoGlobals))
	require.NoError(t, err)
	b, err := Hash(MustParse(`\p q. q p`, NoGlobals))
	require.NoError(t, err)
	c, err := Hash(MustParse(`\p q. p q`, NoGlobals))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
