package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually-advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*TTLStore[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New[string](ttl, WithClock[string](clock.now)), clock
}

func TestGet_Miss(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	v, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSetGet_WithinTTL(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("alice.sol", "addr1")
	clock.advance(4 * time.Minute)

	v, ok := store.Get("alice.sol")
	require.True(t, ok)
	assert.Equal(t, "addr1", v)
}

func TestGet_ExactlyAtTTL(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("alice.sol", "addr1")
	clock.advance(5 * time.Minute)

	// The deadline itself counts as expired.
	_, ok := store.Get("alice.sol")
	assert.False(t, ok)
}

func TestGet_JustBeforeAndAfterTTL(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("alice.sol", "addr1")
	clock.advance(5*time.Minute - time.Millisecond)

	_, ok := store.Get("alice.sol")
	assert.True(t, ok, "one millisecond before the deadline should hit")

	clock.advance(2 * time.Millisecond)
	_, ok = store.Get("alice.sol")
	assert.False(t, ok, "one millisecond after the deadline should miss")
}

func TestGet_ExpiredEntryIsDeleted(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.Set("k", "v")
	require.Equal(t, 1, store.Len())

	clock.advance(2 * time.Minute)
	_, ok := store.Get("k")
	require.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSet_RefreshesDeadline(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("k", "v1")
	clock.advance(4 * time.Minute)

	// Re-insert resets the clock for the entry.
	store.Set("k", "v2")
	clock.advance(4 * time.Minute)

	v, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	store.Set("k", "v")
	store.Delete("k")

	_, ok := store.Get("k")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	store.Delete("absent")
}

func TestEntriesAreIndependent(t *testing.T) {
	store, clock := newTestStore(5 * time.Minute)

	store.Set("old", "v1")
	clock.advance(3 * time.Minute)
	store.Set("new", "v2")
	clock.advance(3 * time.Minute)

	_, ok := store.Get("old")
	assert.False(t, ok, "older entry should have expired")

	v, ok := store.Get("new")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}
