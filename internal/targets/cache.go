package targets

import (
	"sync"

	"github.com/farcloser/cambium/internal/types"
)

// Cache stores resolved profiles. Entries are written once per key and never replaced.
type Cache interface {
	Get(key string) (*types.TargetProfile, bool)
	// Put stores profile unless the key is already set, and returns the stored profile.
	Put(key string, profile *types.TargetProfile) *types.TargetProfile
}

// MemoryCache is a process-local Cache, safe for concurrent use.
type MemoryCache struct {
	entries sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(key string) (*types.TargetProfile, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}

	return value.(*types.TargetProfile), true //nolint:forcetypeassert // only profiles are stored
}

func (c *MemoryCache) Put(key string, profile *types.TargetProfile) *types.TargetProfile {
	actual, _ := c.entries.LoadOrStore(key, profile)

	return actual.(*types.TargetProfile) //nolint:forcetypeassert // only profiles are stored
}

func cacheKey(genre string, mode Mode) string {
	return genre + "@" + string(mode)
}
