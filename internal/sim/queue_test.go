package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueOnlyHeadCountsDown(t *testing.T) {
	q := NewWorkQueue()
	a := q.Enqueue("forge sword", 10)
	b := q.Enqueue("upgrade wall", 20)

	require.Empty(t, q.Update(4))
	entries := q.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, a, entries[0].ID)
	require.Equal(t, 6.0, entries[0].RemainingSeconds)
	require.Equal(t, 20.0, entries[1].RemainingSeconds)
	_ = b
}

func TestQueueOverflowRollsToNext(t *testing.T) {
	q := NewWorkQueue()
	a := q.Enqueue("first", 5)
	b := q.Enqueue("second", 8)

	done := q.Update(9)
	require.Len(t, done, 1)
	require.Equal(t, a, done[0].ID)

	entries := q.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, b, entries[0].ID)
	require.Equal(t, 4.0, entries[0].RemainingSeconds)
}

func TestQueueCompletesSeveralAtOnce(t *testing.T) {
	q := NewWorkQueue()
	q.Enqueue("a", 3)
	q.Enqueue("b", 3)
	q.Enqueue("c", 50)

	done := q.Update(10)
	require.Len(t, done, 2)
	require.Equal(t, "a", done[0].Label)
	require.Equal(t, "b", done[1].Label)
	require.Equal(t, 46.0, q.Entries()[0].RemainingSeconds)
}

func TestQueueCancel(t *testing.T) {
	q := NewWorkQueue()
	a := q.Enqueue("a", 10)
	b := q.Enqueue("b", 10)

	require.True(t, q.Cancel(a))
	require.False(t, q.Cancel(a))
	require.False(t, q.Cancel(999))

	entries := q.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, b, entries[0].ID)
}

func TestQueueIDsMonotonic(t *testing.T) {
	q := NewWorkQueue()
	a := q.Enqueue("a", 1)
	q.Update(5)
	b := q.Enqueue("b", 1)
	require.Greater(t, b, a)
}

func TestQueueRestore(t *testing.T) {
	q := NewWorkQueue()
	q.Restore([]QueueEntry{
		{ID: 4, Label: "a", RemainingSeconds: 2},
		{ID: 9, Label: "b", RemainingSeconds: 3},
	})

	require.Len(t, q.Entries(), 2)
	// 續編 id 必須接在現存最大值之後。
	require.Equal(t, 10, q.Enqueue("c", 1))
}

func TestQueueRestoreEmpty(t *testing.T) {
	q := NewWorkQueue()
	q.Restore(nil)
	require.Empty(t, q.Entries())
	require.Equal(t, 1, q.Enqueue("a", 1))
}
