package middleware

import (
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

// IPRateLimiter hands out one token bucket per client IP. The map only
// grows; entries are never evicted, which is fine for the expected
// handful of clients. Move the buckets to redis if that stops holding.
type IPRateLimiter struct {
	mu        sync.RWMutex
	buckets   map[string]*rate.Limiter
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets:   make(map[string]*rate.Limiter),
		rateLimit: r,
		burstRate: b,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, ok := i.buckets[ip]
	i.mu.RUnlock()
	if ok {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if limiter, ok = i.buckets[ip]; !ok {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.buckets[ip] = limiter
	}
	return limiter
}
