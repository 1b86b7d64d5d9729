package signal

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
)

// RateLimiter keeps one token bucket per connection. A non-positive limit
// disables it.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[core.SessionID]*rate.Limiter
	limit    rate.Limit
	burst    int
	disabled bool
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets:  make(map[core.SessionID]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		disabled: perSecond <= 0,
	}
}

func (rl *RateLimiter) Allow(sid core.SessionID) bool {
	if rl.disabled {
		return true
	}
	rl.mu.Lock()
	b, ok := rl.buckets[sid]
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[sid] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

func (rl *RateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	delete(rl.buckets, sid)
	rl.mu.Unlock()
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}
