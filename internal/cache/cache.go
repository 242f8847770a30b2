// Package cache provides the TTL key/value collaborator injected into the
// upstream clients. Pipeline correctness never depends on a cache being
// present; a nil-safe no-op implementation exists for tests.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the narrow contract the upstream clients rely on.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// MemoryStore wraps patrickmn/go-cache behind the Store contract.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates an in-process store. defaultTTL applies when Set is
// called with a non-positive ttl.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	return s.c.Get(key)
}

func (s *MemoryStore) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.c.Set(key, value, ttl)
}

// Noop satisfies Store without retaining anything.
type Noop struct{}

func (Noop) Get(string) (any, bool)         { return nil, false }
func (Noop) Set(string, any, time.Duration) {}
