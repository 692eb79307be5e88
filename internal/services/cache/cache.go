// Package cache provides time-bounded memoization for the engine's hot read
// paths. Each Snapshot is owned by one engine instance; there is no shared
// process-wide state.
package cache

import (
	"sync"
	"time"
)

// Snapshot memoizes a single fetched value for a TTL window. The check-TTL /
// read-or-fetch / store sequence runs as one critical section, and
// Invalidate is atomic with respect to it, so a write can make the next read
// miss before the write returns.
type Snapshot[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	value     T
	fetchedAt time.Time
	valid     bool

	now func() time.Time
}

// NewSnapshot creates a snapshot cache with the given TTL.
func NewSnapshot[T any](ttl time.Duration) *Snapshot[T] {
	return &Snapshot[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value when it is still fresh, otherwise calls fetch
// and stores the result. A fetch error is returned without caching anything.
func (s *Snapshot[T]) Get(fetch func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.value, nil
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	s.value = value
	s.fetchedAt = s.now()
	s.valid = true
	return value, nil
}

// Invalidate discards the cached value. The next Get always fetches.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.valid = false
}

// SetClock overrides the time source, for tests.
func (s *Snapshot[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
