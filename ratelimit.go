package gmapsgpx

import (
	"sync"
	"time"
)

type rateWindow struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window per-client request limiter backed by a
// bounded map owned by the server instance. Stale windows are pruned
// lazily when an insert would push the map past maxClients; this caps
// memory without tracking a precise sliding window.
type rateLimiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	maxClients int
	clients    map[string]*rateWindow
	now        func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		limit:      cfg.MaxRequests,
		window:     time.Duration(cfg.WindowMS) * time.Millisecond,
		maxClients: cfg.MaxClients,
		clients:    map[string]*rateWindow{},
		now:        time.Now,
	}
}

// allow records a request from addr and reports whether it fits the
// per-window budget.
func (rl *rateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[addr]
	if ok && now.Sub(w.start) < rl.window {
		w.count++
		return w.count <= rl.limit
	}

	if !ok && len(rl.clients) >= rl.maxClients {
		rl.prune(now)
	}
	rl.clients[addr] = &rateWindow{start: now, count: 1}
	return rl.limit > 0
}

func (rl *rateLimiter) prune(now time.Time) {
	for addr, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, addr)
		}
	}
}
