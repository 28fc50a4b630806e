package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalIndexInsertAndCount(t *testing.T) {
	ix := NewIntervalIndex()

	require.NoError(t, ix.Insert(1, 10, win(0, 2)))
	require.NoError(t, ix.Insert(1, 11, win(1, 3)))
	require.NoError(t, ix.Insert(2, 12, win(0, 2)), "other facilities are independent")

	assert.Equal(t, 2, ix.CountOverlapping(1, win(1, 2)))
	assert.Equal(t, 1, ix.CountOverlapping(1, win(2, 4)), "only the window reaching past hour 2")
	assert.Equal(t, 0, ix.CountOverlapping(1, win(3, 5)))
	assert.Equal(t, 1, ix.CountOverlapping(2, win(0, 1)))
	assert.Equal(t, 0, ix.CountOverlapping(99, win(0, 10)), "unknown facility counts zero")
}

func TestIntervalIndexDuplicateInsert(t *testing.T) {
	ix := NewIntervalIndex()
	require.NoError(t, ix.Insert(1, 10, win(0, 2)))
	err := ix.Insert(1, 10, win(5, 6))
	require.Error(t, err)
	assert.Equal(t, 1, ix.CountOverlapping(1, win(0, 10)), "failed insert must not change the set")
}

func TestIntervalIndexRemove(t *testing.T) {
	ix := NewIntervalIndex()
	require.NoError(t, ix.Insert(1, 10, win(0, 2)))
	require.NoError(t, ix.Insert(1, 11, win(0, 2)))

	ix.Remove(1, 10)
	assert.Equal(t, 1, ix.CountOverlapping(1, win(0, 2)))

	ix.Remove(1, 10) // repeat removal is a no-op
	ix.Remove(7, 99) // unknown facility is a no-op
	assert.Equal(t, 1, ix.CountOverlapping(1, win(0, 2)))

	ix.Remove(1, 11)
	assert.Equal(t, 0, ix.Len())
}
