package probe

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit configures token-bucket politeness per probed host.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// HostLimiter throttles probe attempts per host. A nil limiter never waits.
type HostLimiter struct {
	cfg RateLimit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter returns a limiter, or nil when the config disables limiting.
func NewHostLimiter(cfg RateLimit) *HostLimiter {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil
	}
	return &HostLimiter{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host's bucket admits one more request.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h == nil || host == "" {
		return nil
	}

	host = strings.ToLower(host)

	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		interval := h.cfg.Window / time.Duration(h.cfg.Requests)
		if interval <= 0 {
			interval = time.Millisecond
		}
		limiter = rate.NewLimiter(rate.Every(interval), h.cfg.Requests)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
