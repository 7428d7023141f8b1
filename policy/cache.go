package policy

import (
	"sync"
	"time"

	"github.com/hupe1980/dialogmesh/internal/util"
)

// ScoreCache is a short-lived cache of suitability scores keyed by
// (handler name, input hash). Entries expire by TTL only; a miss is always
// safe to recompute because suitability is a best-effort estimate anyway.
type ScoreCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]scoreEntry
	now     func() time.Time
}

type scoreEntry struct {
	score   float64
	expires time.Time
}

// NewScoreCache creates a cache with the given TTL. A non-positive TTL
// disables caching entirely (every Get misses).
func NewScoreCache(ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		ttl:     ttl,
		entries: make(map[string]scoreEntry),
		now:     time.Now,
	}
}

// Get returns a cached score when present and fresh.
func (c *ScoreCache) Get(handler, input string) (float64, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	key := cacheKey(handler, input)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return 0, false
	}
	return entry.score, true
}

// Put stores a score, lazily evicting any expired entries.
func (c *ScoreCache) Put(handler, input string, score float64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	c.entries[cacheKey(handler, input)] = scoreEntry{score: score, expires: now.Add(c.ttl)}
}

func cacheKey(handler, input string) string {
	return handler + ":" + util.HashInput(input)
}
