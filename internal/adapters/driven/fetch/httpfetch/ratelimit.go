package httpfetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff applies when a 429 response carries no usable Retry-After.
const defaultBackoff = 30 * time.Second

// RateLimitConfig holds the per-host rate limit.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit per host.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size per host.
	BurstSize int
}

// hostLimiter is a token bucket for one host with a backoff window set by
// 429 responses.
type hostLimiter struct {
	limiter *rate.Limiter
	retryAt time.Time
}

// HostLimiter rate limits requests independently for each host.
type HostLimiter struct {
	mu    sync.Mutex
	cfg   RateLimitConfig
	hosts map[string]*hostLimiter
	now   func() time.Time
}

// NewHostLimiter creates a per-host limiter. A non-positive rate disables limiting.
func NewHostLimiter(cfg RateLimitConfig) *HostLimiter {
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &HostLimiter{
		cfg:   cfg,
		hosts: make(map[string]*hostLimiter),
		now:   time.Now,
	}
}

func (h *HostLimiter) get(host string) *hostLimiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	hl, ok := h.hosts[host]
	if !ok {
		limit := rate.Inf
		if h.cfg.RequestsPerSecond > 0 {
			limit = rate.Limit(h.cfg.RequestsPerSecond)
		}
		hl = &hostLimiter{limiter: rate.NewLimiter(limit, h.cfg.BurstSize)}
		h.hosts[host] = hl
	}
	return hl
}

// Wait blocks until a request to host can be made, honouring any backoff
// recorded for it.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	hl := h.get(host)

	h.mu.Lock()
	wait := hl.retryAt.Sub(h.now())
	h.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return hl.limiter.Wait(ctx)
}

// Backoff blocks requests to host for the given duration.
// Call this when a host answers 429.
func (h *HostLimiter) Backoff(host string, d time.Duration) {
	if d <= 0 {
		d = defaultBackoff
	}
	hl := h.get(host)
	h.mu.Lock()
	defer h.mu.Unlock()
	if until := h.now().Add(d); until.After(hl.retryAt) {
		hl.retryAt = until
	}
}
