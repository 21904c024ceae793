package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_InsertAndGet(t *testing.T) {
	s := newNotificationStore()
	s.insert(1, testNotification("a"))

	n, ok := s.get(1)
	require.True(t, ok)
	assert.Equal(t, "a", n.Summary)

	_, ok = s.get(2)
	assert.False(t, ok)
}

func TestNotificationStore_ReplaceInPlaceBumpsGeneration(t *testing.T) {
	s := newNotificationStore()
	s.insert(1, testNotification("a"))

	gen0, ok := s.getGeneration(1)
	require.True(t, ok)
	assert.Equal(t, uint64(0), gen0)

	previous, gen1, ok := s.replaceInPlace(1, testNotification("b"))
	require.True(t, ok)
	assert.Equal(t, "a", previous.Summary)
	assert.Equal(t, uint64(1), gen1)

	n, ok := s.get(1)
	require.True(t, ok)
	assert.Equal(t, "b", n.Summary)
}

func TestNotificationStore_ReplaceInPlaceAbsentIDFails(t *testing.T) {
	s := newNotificationStore()
	_, _, ok := s.replaceInPlace(42, testNotification("x"))
	assert.False(t, ok)
}

func TestNotificationStore_RemoveIfGenerationOnlyRemovesCurrent(t *testing.T) {
	s := newNotificationStore()
	s.insert(1, testNotification("a"))
	s.replaceInPlace(1, testNotification("b")) // generation is now 1

	assert.False(t, s.removeIfGeneration(1, 0), "stale generation must not remove")

	_, ok := s.get(1)
	assert.True(t, ok, "entry must survive a stale removeIfGeneration call")

	assert.True(t, s.removeIfGeneration(1, 1))
	_, ok = s.get(1)
	assert.False(t, ok)
}

func TestNotificationStore_RemoveIfActionPresent(t *testing.T) {
	s := newNotificationStore()
	s.insert(1, testNotificationWithAction("a", "open"))

	_, ok := s.removeIfActionPresent(1, "close")
	assert.False(t, ok, "unknown action key must not remove the entry")
	_, stillThere := s.get(1)
	assert.True(t, stillThere)

	removed, ok := s.removeIfActionPresent(1, "open")
	require.True(t, ok)
	assert.Equal(t, "a", removed.Summary)
	_, stillThere = s.get(1)
	assert.False(t, stillThere)
}

func TestNotificationStore_SnapshotIsPointInTimeCopy(t *testing.T) {
	s := newNotificationStore()
	s.insert(1, testNotification("a"))
	s.insert(2, testNotification("b"))

	snap := s.snapshot()
	require.Len(t, snap, 2)

	s.remove(1)
	assert.Len(t, snap, 2, "snapshot must not observe later mutation")
	assert.Len(t, s.snapshot(), 1)
}

func TestIDAllocator_AllocatesSequentially(t *testing.T) {
	a := newIDAllocator()
	id1, ok := a.alloc()
	require.True(t, ok)
	id2, ok := a.alloc()
	require.True(t, ok)
	assert.Equal(t, id1+1, id2)
}

func TestIDAllocator_SaturatesInsteadOfWrapping(t *testing.T) {
	a := &idAllocator{next: maxUint32}

	id, ok := a.alloc()
	require.True(t, ok)
	assert.Equal(t, maxUint32, id)

	_, ok = a.alloc()
	assert.False(t, ok, "allocator must refuse once the id space is exhausted")
}
