package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maxFirst(a, b int) bool { return a > b }

func TestQueue_PopOrder(t *testing.T) {
	q := New(maxFirst)
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		q.Push(v)
	}

	assert.Equal(t, 8, q.Len())
	assert.Equal(t, []int{9, 6, 5, 4, 3, 2, 1, 1}, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Peek(t *testing.T) {
	q := New(maxFirst)

	_, ok := q.Peek()
	assert.False(t, ok)

	q.Push(2)
	q.Push(7)
	top, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 7, top)
	assert.Equal(t, 2, q.Len(), "peek must not remove")
}

func TestQueue_PopEmpty(t *testing.T) {
	q := New(maxFirst)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestTopN(t *testing.T) {
	items := []int{5, 2, 9, 1, 7}

	assert.Equal(t, []int{9, 7, 5}, TopN(items, 3, maxFirst))
	assert.Equal(t, []int{9, 7, 5, 2, 1}, TopN(items, 10, maxFirst))
	assert.Nil(t, TopN(items, 0, maxFirst))
	assert.Empty(t, TopN(nil, 3, maxFirst))
}
