package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedIndex is a built lookup index plus its build time.
type cachedIndex struct {
	index *Index
	built time.Time
}

func (c *cachedIndex) expired(ttl time.Duration) bool {
	if ttl == 0 {
		return true // No caching
	}
	return time.Since(c.built) > ttl
}

// IndexCache serves catalog lookup indices with TTL expiry and stampede
// protection, so targeted lookups between runs don't rebuild the index
// concurrently.
type IndexCache struct {
	store *Store
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]*cachedIndex
	sf      singleflight.Group
}

// NewIndexCache creates an index cache over the store. A zero TTL disables
// caching; every Get rebuilds.
func NewIndexCache(store *Store, ttl time.Duration) *IndexCache {
	return &IndexCache{
		store:   store,
		ttl:     ttl,
		entries: make(map[string]*cachedIndex),
	}
}

// Get returns a fresh or cached index for the given archived-inclusion mode.
func (c *IndexCache) Get(ctx context.Context, includeArchived bool) (*Index, error) {
	key := strconv.FormatBool(includeArchived)

	// Fast path: cached and fresh
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !entry.expired(c.ttl) {
		return entry.index, nil
	}

	// Slow path: build under singleflight to prevent stampedes
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !entry.expired(c.ttl) {
			return entry.index, nil
		}

		index, err := c.store.BuildIndex(ctx, includeArchived)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &cachedIndex{index: index, built: time.Now()}
		c.mu.Unlock()

		return index, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Index), nil
}

// Invalidate drops all cached indices, forcing the next Get to rebuild.
// Called after write-back mutates the catalog.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*cachedIndex)
	c.mu.Unlock()
}
