package gmapsgpx

import (
	"sync"
	"time"
)

type cachedURL struct {
	url       string
	expiresAt time.Time
}

// resolveCache memoizes short-link resolutions so repeated proxy calls for
// the same link do not hit the upstream service. Entries expire after ttl;
// expired entries are swept when an insert finds the map full.
type resolveCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]cachedURL
}

func newResolveCache(ttl time.Duration, max int) *resolveCache {
	return &resolveCache{
		ttl:     ttl,
		max:     max,
		entries: map[string]cachedURL{},
	}
}

func (c *resolveCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.url, true
}

func (c *resolveCache) put(key, resolved string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.max {
			return
		}
	}
	c.entries[key] = cachedURL{url: resolved, expiresAt: now.Add(c.ttl)}
}
