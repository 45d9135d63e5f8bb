// Package cache stores computed projections keyed by input fingerprint,
// either in process or in Redis.
package cache

import (
	"context"
	"time"

	"github.com/iwvelando/rental-projection/internal/projection"
	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process projection cache with expiring entries.
type Memory struct {
	store *gocache.Cache
}

// NewMemory returns a cache whose entries expire after ttl and are purged
// every cleanupInterval.
func NewMemory(ttl, cleanupInterval time.Duration) *Memory {
	return &Memory{store: gocache.New(ttl, cleanupInterval)}
}

// Get implements projection.Cache.
func (m *Memory) Get(_ context.Context, key string) (*projection.Output, bool) {
	value, found := m.store.Get(key)
	if !found {
		return nil, false
	}
	out, ok := value.(*projection.Output)
	return out, ok
}

// Set implements projection.Cache.
func (m *Memory) Set(_ context.Context, key string, out *projection.Output) {
	m.store.SetDefault(key, out)
}

// Len returns the number of entries, expired ones included until purged.
func (m *Memory) Len() int {
	return m.store.ItemCount()
}

// Flush removes every entry.
func (m *Memory) Flush() {
	m.store.Flush()
}

var _ projection.Cache = (*Memory)(nil)
