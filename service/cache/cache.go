// Package cache provides a small in-memory key-value store with per-entry
// TTL semantics. It is designed to be injected explicitly into whatever
// component owns it, so tests can construct a fresh, isolated instance
// (optionally with a fake clock) per case.
package cache

import (
	"sync"
	"time"
)

// entry is an immutable value+deadline pair. Entries are never mutated in
// place; a refresh replaces the whole entry.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLStore maps string keys to values that expire after a fixed duration.
// The zero value is not usable; use New.
type TTLStore[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTLStore.
type Option[V any] func(*TTLStore[V])

// WithClock overrides the time source. Tests use this to step past the TTL
// deterministically.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *TTLStore[V]) { s.now = now }
}

// New creates a TTLStore whose entries live for ttl after insertion.
func New[V any](ttl time.Duration, opts ...Option[V]) *TTLStore[V] {
	s := &TTLStore[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live value for key. Expired entries are deleted on the
// spot and reported as a miss.
func (s *TTLStore[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces the value for key with a fresh deadline.
func (s *TTLStore[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Delete removes key if present.
func (s *TTLStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports the number of stored entries, including any that have expired
// but not yet been read.
func (s *TTLStore[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
