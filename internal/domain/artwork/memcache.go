package artwork

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxEntries bounds the number of images held in memory.
	DefaultMaxEntries = 50

	// DefaultMaxCost bounds the aggregate decoded size held in memory (100 MiB).
	DefaultMaxCost = 100 * 1024 * 1024
)

// MemoryCache is a bounded in-process artwork cache. It enforces both an
// entry-count limit and an aggregate cost budget; the least recently used
// entry is evicted first when either bound would be exceeded.
type MemoryCache struct {
	mu      sync.Mutex
	lru     *lru.Cache[string, *Artwork]
	maxCost int64
	used    int64
}

// NewMemoryCache creates a memory cache with the given bounds.
func NewMemoryCache(maxEntries int, maxCost int64) (*MemoryCache, error) {
	c := &MemoryCache{maxCost: maxCost}

	// The eviction callback runs synchronously under c.mu (inside Put),
	// so adjusting the cost counter here is safe.
	inner, err := lru.NewWithEvict[string, *Artwork](maxEntries, func(_ string, art *Artwork) {
		c.used -= art.Cost()
	})
	if err != nil {
		return nil, err
	}
	c.lru = inner
	return c, nil
}

// Get returns the cached artwork for key, marking it as recently used.
func (c *MemoryCache) Get(key string) (*Artwork, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// Put inserts artwork under key, evicting least recently used entries until
// both the count and cost bounds hold.
func (c *MemoryCache) Put(key string, art *Artwork) {
	if art == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Remove an existing entry first so its cost is released through the
	// eviction callback before the replacement is accounted.
	c.lru.Remove(key)

	c.lru.Add(key, art)
	c.used += art.Cost()

	// Never leave the cache above budget, even if the inserted entry is the
	// one that has to go.
	for c.used > c.maxCost && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Cost returns the aggregate cost of all cached entries.
func (c *MemoryCache) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}
