package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExits_TakeMostRecent(t *testing.T) {
	var ex *exits
	ex = &exits{label: 1, slot: 1, next: ex}
	ex = &exits{label: 2, slot: 2, next: ex}
	ex = &exits{label: 1, slot: 2, next: ex}

	slot, rest, ok := ex.take(1)
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	// the label-2 exit survives, the older label-1 exit is next in line
	slot, rest2, ok := rest.take(1)
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	_, _, ok = rest2.take(1)
	assert.False(t, ok)
	slot, _, ok = rest2.take(2)
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	// the original list is untouched
	slot, _, ok = ex.take(1)
	assert.True(t, ok)
	assert.Equal(t, 2, slot)
}

func TestScope_Index(t *testing.T) {
	var sc *scope
	sc = sc.push(10)
	sc = sc.push(20)
	sc = sc.push(30)

	i, name, ok := sc.index(10)
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, "a", name)

	i, name, ok = sc.index(30)
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, "c", name)

	_, _, ok = sc.index(40)
	assert.False(t, ok)
}

func TestBinderName(t *testing.T) {
	assert.Equal(t, "a", binderName(0))
	assert.Equal(t, "z", binderName(25))
	assert.Equal(t, "a1", binderName(26))
	assert.Equal(t, "c2", binderName(54))
}
