package ratelimit

import (
	"time"
)

// Config tunes the HTTP middleware. Redis key layout belongs to the Limiter.
type Config struct {
	// Limit is the maximum number of requests a client may make per Window.
	Limit int

	// Window is the sliding window length.
	Window time.Duration

	// ClientIDHeader is the header a client may use to identify itself.
	// Requests without it are keyed by remote IP.
	ClientIDHeader string

	// FallbackClientID is used when neither header nor IP is available.
	FallbackClientID string

	// SkipPaths are exempt from limiting.
	SkipPaths []string
}

// DefaultConfig allows 120 requests a minute, keyed by X-Client-ID.
func DefaultConfig() Config {
	return Config{
		Limit:            120,
		Window:           time.Minute,
		ClientIDHeader:   "X-Client-ID",
		FallbackClientID: "anonymous",
	}
}

// Option customizes a Config.
type Option func(*Config)

// WithLimit sets the request limit per window.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithClientIDHeader names the header clients identify themselves with.
func WithClientIDHeader(header string) Option {
	return func(c *Config) {
		c.ClientIDHeader = header
	}
}

// WithFallbackClientID sets the key used when a client cannot be identified.
func WithFallbackClientID(id string) Option {
	return func(c *Config) {
		c.FallbackClientID = id
	}
}

// WithSkipPaths exempts exact request paths from limiting.
func WithSkipPaths(paths ...string) Option {
	return func(c *Config) {
		c.SkipPaths = append(c.SkipPaths, paths...)
	}
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return cfg
}
