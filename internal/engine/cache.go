// Package engine evaluates the graph: it walks the topological order,
// resolves node inputs, dispatches to each node's function, and memoizes
// results under a TTL policy.
package engine

import (
	"sync"
	"time"

	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/pkgid"
)

// Cache memoizes node results with a time-based validity window. It is
// owned by an Evaluator (constructed with the graph, torn down with it);
// there is no process-wide shared cache. Safe for concurrent use, which
// layer-parallel evaluation relies on.
type Cache struct {
	mu      sync.RWMutex
	entries map[pkgid.ID]cacheEntry
	ttl     time.Duration

	hits      uint64
	misses    uint64
	lastBuild time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

type cacheEntry struct {
	value fn.Value
	at    time.Time
}

// CacheStats is a point-in-time snapshot for observability.
type CacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	LastBuild time.Duration
}

// DefaultTTL is the validity window used when none is configured.
const DefaultTTL = 5 * time.Second

// NewCache creates a cache with the given validity window.
// A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[pkgid.ID]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value if its age is within the cache's TTL.
func (c *Cache) Get(id pkgid.ID) (fn.Value, bool) {
	return c.GetWithin(id, c.ttl)
}

// GetWithin returns the cached value only if now - entry.timestamp is less
// than maxAge; otherwise it reports a miss.
func (c *Cache) GetWithin(id pkgid.ID, maxAge time.Duration) (fn.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok || c.now().Sub(e.at) >= maxAge {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Put stores a value with the current timestamp, overwriting any prior
// entry.
func (c *Cache) Put(id pkgid.ID, value fn.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = cacheEntry{value: value, at: c.now()}
}

// Invalidate clears the entry for id and, through the graph's reverse
// adjacency, every entry that transitively depends on it. Returns the
// number of entries cleared. This is what keeps derived values from going
// stale after an upstream raw-data update.
func (c *Cache) Invalidate(g *graph.Graph, id pkgid.ID) int {
	targets := append(g.TransitiveDependents(id), id)

	c.mu.Lock()
	defer c.mu.Unlock()

	cleared := 0
	for _, t := range targets {
		if _, ok := c.entries[t]; ok {
			delete(c.entries, t)
			cleared++
		}
	}
	return cleared
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[pkgid.ID]cacheEntry)
}

// Stats returns a snapshot of hit/miss counters and the duration of the
// last evaluation pass.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		LastBuild: c.lastBuild,
	}
}

// recordBuild stores the duration of the last evaluation pass.
func (c *Cache) recordBuild(d time.Duration) {
	c.mu.Lock()
	c.lastBuild = d
	c.mu.Unlock()
}
