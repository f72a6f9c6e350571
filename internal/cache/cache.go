package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process map with per-entry expiry.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time
}

type entry struct {
	val any
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// a writer may have refreshed the entry since the read lock was dropped
		if cur, ok := c.m[key]; ok && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

// SetWithTTL stores val until ttl elapses; a non-positive ttl means the
// cache default.
func (c *Cache) SetWithTTL(key string, val any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	c.m[key] = entry{val: val, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Sweep drops every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}
