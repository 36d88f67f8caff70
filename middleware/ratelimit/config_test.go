package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 120, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, "X-Client-ID", cfg.ClientIDHeader)
	assert.Equal(t, "anonymous", cfg.FallbackClientID)
	assert.Empty(t, cfg.SkipPaths)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "limit",
			opts: []Option{WithLimit(10, 30*time.Second)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 10, cfg.Limit)
				assert.Equal(t, 30*time.Second, cfg.Window)
			},
		},
		{
			name: "non-positive limit keeps default",
			opts: []Option{WithLimit(0, -time.Second)},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 120, cfg.Limit)
				assert.Equal(t, time.Minute, cfg.Window)
			},
		},
		{
			name: "header",
			opts: []Option{WithClientIDHeader("X-Api-Client")},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "X-Api-Client", cfg.ClientIDHeader)
			},
		},
		{
			name: "skip paths accumulate",
			opts: []Option{WithSkipPaths("/health"), WithSkipPaths("/api/cache/stats")},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"/health", "/api/cache/stats"}, cfg.SkipPaths)
			},
		},
		{
			name: "fallback id",
			opts: []Option{WithFallbackClientID("unknown")},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "unknown", cfg.FallbackClientID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newConfig(tt.opts))
		})
	}
}

func TestResult_RetryAfter(t *testing.T) {
	now := time.Now()

	r := &Result{ResetAt: now.Add(2500 * time.Millisecond)}
	assert.Equal(t, 3, r.RetryAfter(now))

	r = &Result{ResetAt: now.Add(-time.Second)}
	assert.Equal(t, 1, r.RetryAfter(now))
}

func TestMiddleware_ConfigIsNormalized(t *testing.T) {
	m := New(nil, nopLogger{}, WithLimit(-1, 0), WithSkipPaths("/health"))

	cfg := m.Config()
	assert.Equal(t, DefaultConfig().Limit, cfg.Limit)
	assert.Equal(t, DefaultConfig().Window, cfg.Window)
	assert.Equal(t, []string{"/health"}, cfg.SkipPaths)
}
