package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(3, 1.0, now)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := bucket.take(now)
		assert.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, full := bucket.take(now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(3*time.Second), full)
	assert.Equal(t, time.Second, bucket.retryAfter())
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(2, 1.0, now)
	bucket.take(now)
	bucket.take(now)

	allowed, _, _ := bucket.take(now.Add(500 * time.Millisecond))
	assert.False(t, allowed)

	allowed, _, _ = bucket.take(now.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token should refill after a second")

	// Refill never exceeds capacity.
	_, remaining, _ := bucket.take(now.Add(time.Hour))
	assert.Equal(t, 1, remaining)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/responses", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/schema", "GET")
	assert.False(t, allowed, "default bucket is shared across unconfigured routes")
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_WildcardRouteSharesBucket(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(2),
	})

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("10.0.0.1", fmt.Sprintf("/responses/r-%d/feedback", i), "POST")
		require.True(t, allowed)
		assert.Equal(t, 2, info.Limit)
	}
	// Burst is 5 but only 2 per hour; the bucket started with 5 tokens.
	for i := 2; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", fmt.Sprintf("/responses/r-%d/feedback", i), "POST")
		require.True(t, allowed)
	}
	allowed, info := l.Allow("10.0.0.1", "/responses/another/feedback", "POST")
	assert.False(t, allowed, "a new response id must not get a fresh bucket")
	assert.InDelta(t, float64(30*time.Minute), float64(info.RetryAfter), float64(time.Second))

	clock.Advance(31 * time.Minute)
	allowed, _ = l.Allow("10.0.0.1", "/responses/another/feedback", "POST")
	assert.True(t, allowed)

	// Reads are not affected.
	allowed, _ = l.Allow("10.0.0.1", "/responses/another/feedback", "GET")
	assert.True(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	allowed, _ := l.Allow("a", "/schema", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/schema", "GET")
	assert.False(t, allowed)
	allowed, _ = l.Allow("b", "/schema", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/schema", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_DisabledAndHealth(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("x", "/speech", "POST")
		assert.True(t, allowed)
	}
	assert.False(t, l.Enabled())

	l2, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	for i := 0; i < 5; i++ {
		allowed, info := l2.Allow("x", "/health", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/responses", "GET"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Minute,
	})

	for i := 0; i < 4; i++ {
		l.Allow(fmt.Sprintf("127.0.0.%d", i), "/schema", "GET")
	}
	clock.Advance(30 * time.Second)
	l.Allow("127.0.0.0", "/schema", "GET")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 3, l.cleanup())
	assert.Len(t, l.buckets, 1)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/schema", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 600, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := append(DefaultEndpointConfigs(10),
		EndpointConfig{Path: "/admin/", Method: "DELETE", Limit: 1, Window: time.Minute},
	)

	tests := []struct {
		path, method string
		want         string
	}{
		{"/responses/abc/feedback", "POST", "/responses/*/feedback"},
		{"/responses/abc/feedback/transcript", "POST", "/responses/*/feedback/transcript"},
		{"/responses//feedback", "POST", ""},
		{"/responses/abc/feedback", "GET", ""},
		{"/speech", "POST", "/speech"},
		{"/admin/x/y", "DELETE", "/admin/"},
		{"/admin/", "DELETE", "/admin/"},
		{"/health", "GET", "/health"},
		{"/schema", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")
	t.Setenv("RATE_LIMIT_FEEDBACK_PER_HOUR", "7")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Len(t, cfg.Whitelist, 2)
	require.NotEmpty(t, cfg.EndpointConfigs)
	assert.Equal(t, 7, cfg.EndpointConfigs[0].Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
