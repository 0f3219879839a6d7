// Package ratelimit provides per-client token bucket rate limiting for the HTTP server.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket refills at a steady rate up to capacity.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

// take refills the bucket, consumes one token if available, and reports what is left and
// when the bucket will be full again.
func (b *tokenBucket) take(now time.Time) (allowed bool, remaining int, full time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.lastRefill = now
	b.lastUsed = now

	if b.tokens >= 1 {
		b.tokens--
		allowed = true
	}

	full = now
	if b.tokens < b.capacity && b.refillRate > 0 {
		wait := (b.capacity - b.tokens) / b.refillRate
		full = now.Add(time.Duration(wait * float64(time.Second)))
	}
	return allowed, int(b.tokens), full
}

// retryAfter is the wait until one token is available.
func (b *tokenBucket) retryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens >= 1 || b.refillRate <= 0 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
}

func (b *tokenBucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter keeps one bucket per client and route.
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter and starts its cleanup goroutine. Call Stop when done.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = time.Hour
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Enabled reports whether requests are being limited at all.
func (l *Limiter) Enabled() bool {
	return l.config.Enabled
}

// Allow checks a request from clientID to path with method and consumes a token when allowed.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	ec := MatchEndpoint(path, method, l.config.EndpointConfigs)
	key := clientID + " " + method + " " + path
	if ec == nil {
		ec = &EndpointConfig{
			Path:   "*",
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
		key = clientID + " default"
	} else {
		// Routes with wildcards share one bucket per client, not one per response id.
		key = clientID + " " + ec.Method + " " + ec.Path
	}
	if ec.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	bucket := l.bucket(key, ec, now)
	allowed, remaining, full := bucket.take(now)

	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: remaining,
		ResetTime: full,
	}
	if !allowed {
		info.RetryAfter = bucket.retryAfter()
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ec *EndpointConfig, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	window := ec.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := ec.Burst
	if capacity <= 0 {
		capacity = ec.Limit
	}
	b := newTokenBucket(capacity, float64(ec.Limit)/window.Seconds(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets idle for longer than IdleTTL.
func (l *Limiter) cleanup() int {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for key, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
