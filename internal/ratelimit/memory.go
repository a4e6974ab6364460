package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process fixed-window counter. Suitable for
// tests and single-instance deployments; use RedisStore when scaling out.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	// now is swappable in tests
	now func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*windowEntry), now: time.Now}
}

// sweep threshold: expired entries are dropped lazily once the map grows past
// this size, so a probe flood does not grow memory without bound.
const sweepThreshold = 4096

func (s *MemoryStore) Check(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		if len(s.entries) >= sweepThreshold {
			s.sweepLocked(now)
		}
		e = &windowEntry{resetAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	if e.count > limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}
	return Result{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}, nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
}
