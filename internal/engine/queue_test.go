package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairQueue_FIFO(t *testing.T) {
	q := newPairQueue()
	for i := 1; i <= 3; i++ {
		q.Enqueue(pair{a: i, b: i + 10})
	}
	assert.Equal(t, 3, q.Len())

	for i := 1; i <= 3; i++ {
		p, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, pair{a: i, b: i + 10}, p)
	}
	assert.Equal(t, 0, q.Len())
}

func TestPairQueue_TryDequeue_Empty(t *testing.T) {
	q := newPairQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestPairQueue_ReusesStorage(t *testing.T) {
	q := newPairQueue()
	q.Enqueue(pair{a: 1, b: 2})
	_, ok := q.TryDequeue()
	require.True(t, ok)

	q.Enqueue(pair{a: 3, b: 4})
	p, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, pair{a: 3, b: 4}, p)
}
