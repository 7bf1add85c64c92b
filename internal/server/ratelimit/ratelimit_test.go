package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(configs []EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: configs,
	}
}

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := newTokenBucket(3, 0.001)

	for i := 0; i < 3; i++ {
		assert.True(t, bucket.allow(), "request %d should be allowed", i)
	}
	assert.False(t, bucket.allow())
}

func TestLimiterBurst(t *testing.T) {
	limiter := NewLimiter(testConfig([]EndpointConfig{
		{Path: "/cover-letters", Method: "POST", Limit: 20, Window: time.Hour, Burst: 2},
	}))
	defer limiter.Stop()

	allowed, info := limiter.Allow("1.2.3.4", "/cover-letters", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 20, info.Limit)

	allowed, _ = limiter.Allow("1.2.3.4", "/cover-letters", "POST")
	assert.True(t, allowed)

	allowed, info = limiter.Allow("1.2.3.4", "/cover-letters", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiterIsolatesClients(t *testing.T) {
	limiter := NewLimiter(testConfig([]EndpointConfig{
		{Path: "/cover-letters", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
	}))
	defer limiter.Stop()

	allowed, _ := limiter.Allow("1.1.1.1", "/cover-letters", "POST")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("1.1.1.1", "/cover-letters", "POST")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("2.2.2.2", "/cover-letters", "POST")
	assert.True(t, allowed)
}

func TestLimiterWhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.2"] = true
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/anything", "GET")
	assert.True(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2", "/anything", "GET")
	assert.False(t, allowed)
}

func TestLimiterDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("x", "/cover-letters", "POST")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	t.Run("exact match", func(t *testing.T) {
		m := MatchEndpoint("/cover-letters", "POST", configs)
		require.NotNil(t, m)
		assert.Equal(t, 20, m.Limit)
	})

	t.Run("prefix match", func(t *testing.T) {
		m := MatchEndpoint("/cover-letters/123", "PUT", configs)
		require.NotNil(t, m)
		assert.Equal(t, time.Hour, m.Window)
	})

	t.Run("health is unlimited", func(t *testing.T) {
		m := MatchEndpoint("/health", "GET", configs)
		require.NotNil(t, m)
		assert.Equal(t, 0, m.Limit)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, MatchEndpoint("/profile", "GET", configs))
	})
}
