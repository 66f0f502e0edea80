// Package cache provides the in-process ticker cache used by the detection
// engine. Each (symbol, exchange) cell is independent; staleness is derived
// from the ticker's fetch time against a fixed TTL, not from write ordering.
package cache

import (
	"sync"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// DefaultTTL is the maximum age a cached ticker may reach before the caller
// must refetch it.
const DefaultTTL = 10 * time.Second

// TickerCache is a bounded-staleness store mapping (symbol, exchange) to the
// most recent ticker. Same-key writes are last-writer-wins; concurrent
// readers and writers for different keys do not block each other beyond the
// shared map lock, and no operation ever spans multiple keys.
type TickerCache struct {
	mu  sync.RWMutex
	m   map[tickerKey]domain.Ticker
	ttl time.Duration
}

type tickerKey struct {
	symbol   string
	exchange string
}

// NewTickerCache creates a cache with the given TTL. A non-positive TTL
// selects DefaultTTL.
func NewTickerCache(ttl time.Duration) *TickerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TickerCache{
		m:   make(map[tickerKey]domain.Ticker),
		ttl: ttl,
	}
}

// TTL returns the configured staleness bound.
func (c *TickerCache) TTL() time.Duration { return c.ttl }

// Get returns the cached ticker for (symbol, exchange). The second return is
// false on a miss. Expired entries are still returned; callers decide with
// IsStale whether to refetch, so a fetch failure can fall back to slightly
// stale data if they choose to.
func (c *TickerCache) Get(symbol, exchange string) (domain.Ticker, bool) {
	c.mu.RLock()
	t, ok := c.m[tickerKey{symbol, exchange}]
	c.mu.RUnlock()
	return t, ok
}

// Put stores a ticker under its own (symbol, exchange) key.
func (c *TickerCache) Put(t domain.Ticker) {
	c.mu.Lock()
	c.m[tickerKey{t.Symbol, t.Exchange}] = t
	c.mu.Unlock()
}

// IsStale reports whether a ticker has outlived the TTL at the given time.
func (c *TickerCache) IsStale(t domain.Ticker, now time.Time) bool {
	return t.Age(now) > c.ttl
}

// Purge drops every entry older than the TTL. The poller calls this
// periodically so symbols removed from rotation do not pin memory.
func (c *TickerCache) Purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, t := range c.m {
		if t.Age(now) > c.ttl {
			delete(c.m, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *TickerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
