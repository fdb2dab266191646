package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optimal/internal/net"
)

// pairNet builds two nodes facing each other at their principal ports.
// Every auxiliary port is capped with an ERA so the net passes Check.
func pairNet(ka net.Kind, la uint64, kb net.Kind, lb uint64) (*net.Net, int, int) {
	n := net.New()
	a := n.Alloc(ka, la)
	b := n.Alloc(kb, lb)
	n.Link(net.MakePort(a, 0), net.MakePort(b, 0))
	for _, id := range []int{a, b} {
		for s := 1; s < n.Kind(id).Arity(); s++ {
			e := n.Alloc(net.ERA, 0)
			n.Link(net.MakePort(e, 0), net.MakePort(id, s))
		}
	}
	// ROOT is not part of the pair; give it an eraser of its own
	e := n.Alloc(net.ERA, 0)
	n.Link(n.Root(), net.MakePort(e, 0))
	return n, a, b
}

func TestInteract_Annihilate(t *testing.T) {
	tests := []struct {
		name   string
		ka, kb net.Kind
		la, lb uint64
	}{
		{"con-con", net.CON, net.CON, 0, 0},
		{"dup-dup same label", net.DUP, net.DUP, 7, 7},
		{"era-era", net.ERA, net.ERA, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, a, b := pairNet(tt.ka, tt.la, tt.kb, tt.lb)
			before := n.Len()
			r := New(n, newTestBook(t))

			require.NoError(t, r.interact(context.Background(), a, b))
			assert.Equal(t, before-2, n.Len())
			assert.False(t, n.Live(a))
			assert.False(t, n.Live(b))
			assert.Equal(t, 1, r.Stats().Rewrites)
			require.NoError(t, n.Check())
		})
	}
}

func TestInteract_Commute(t *testing.T) {
	tests := []struct {
		name   string
		ka, kb net.Kind
		la, lb uint64
	}{
		{"con-dup", net.CON, net.DUP, 0, 3},
		{"dup-dup different labels", net.DUP, net.DUP, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, a, b := pairNet(tt.ka, tt.la, tt.kb, tt.lb)
			before := n.Len()
			r := New(n, newTestBook(t))

			require.NoError(t, r.interact(context.Background(), a, b))
			assert.Equal(t, before+2, n.Len())
			require.NoError(t, n.Check())

			// copies inherit kind and label
			labels := n.Labels()
			if tt.kb == net.DUP {
				assert.Equal(t, 2, labels[tt.lb])
			}
			if tt.ka == net.DUP {
				assert.Equal(t, 2, labels[tt.la])
			}
		})
	}
}

func TestInteract_Erase(t *testing.T) {
	n, a, b := pairNet(net.ERA, 0, net.CON, 0)
	before := n.Len()
	r := New(n, newTestBook(t))

	require.NoError(t, r.interact(context.Background(), b, a))
	// CON and its eraser go, two caps come in
	assert.Equal(t, before, n.Len())
	assert.False(t, n.Live(b))
	require.NoError(t, n.Check())
}

func TestInteract_EraseReference(t *testing.T) {
	n := net.New()
	e := n.Alloc(net.ERA, 0)
	ref := n.AllocRef("loop")
	n.Link(net.MakePort(e, 0), net.MakePort(ref, 0))
	root := n.Alloc(net.ERA, 0)
	n.Link(n.Root(), net.MakePort(root, 0))

	r := New(n, newTestBook(t))
	require.NoError(t, r.interact(context.Background(), ref, e))
	assert.Equal(t, 1, n.Len())
	assert.Equal(t, 1, r.Stats().Rewrites)
}

func TestInteract_ExpandsReferenceInPair(t *testing.T) {
	book := newTestBook(t)
	n := net.New()
	app := n.Alloc(net.CON, 0)
	ref := n.AllocRef("id")
	n.Link(net.MakePort(app, 0), net.MakePort(ref, 0))
	arg := n.Alloc(net.ERA, 0)
	n.Link(net.MakePort(app, 1), net.MakePort(arg, 0))
	n.Link(net.MakePort(app, 2), n.Root())

	r := New(n, book)
	require.NoError(t, r.interact(context.Background(), app, ref))
	assert.False(t, n.Live(ref))

	lam := n.Enter(net.MakePort(app, 0))
	assert.True(t, lam.Principal())
	assert.Equal(t, net.CON, n.Kind(lam.Node()))
	require.NoError(t, n.Check())
}

func TestInteract_RejectsRoot(t *testing.T) {
	n := net.New()
	e := n.Alloc(net.ERA, 0)
	n.Link(n.Root(), net.MakePort(e, 0))

	err := New(n, newTestBook(t)).interact(context.Background(), n.Root().Node(), e)
	require.Error(t, err)
	assert.True(t, net.IsInvariantError(err))
}
