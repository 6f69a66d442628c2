package indexing

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lri/internal/types"
)

// ContentCache keeps the symbols built for each file keyed by a hash of its content,
// so a re-index only parses files whose bytes changed. Cached symbols are shared
// between tables and must not be modified.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    int64 // atomic
}

type cacheEntry struct {
	hash    uint64
	symbols []*types.Symbol
}

// NewContentCache creates an empty cache
func NewContentCache() *ContentCache {
	return &ContentCache{entries: make(map[string]cacheEntry)}
}

// Lookup returns the cached symbols of path if content is unchanged
func (c *ContentCache) Lookup(path string, content []byte) ([]*types.Symbol, bool) {
	hash := xxhash.Sum64(content)

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || entry.hash != hash {
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.symbols, true
}

// Store records the symbols built from content
func (c *ContentCache) Store(path string, content []byte, symbols []*types.Symbol) {
	hash := xxhash.Sum64(content)

	c.mu.Lock()
	c.entries[path] = cacheEntry{hash: hash, symbols: symbols}
	c.mu.Unlock()
}

// Retain drops every entry whose path is not in keep
func (c *ContentCache) Retain(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.entries {
		if !keep[path] {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of cached files
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Hits returns how many lookups were served from the cache
func (c *ContentCache) Hits() int64 {
	return atomic.LoadInt64(&c.hits)
}
