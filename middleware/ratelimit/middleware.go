package ratelimit

import (
	"slices"
	"strconv"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// MsgTooManyRequests is the error body sent with a 429 response.
const MsgTooManyRequests = "Too many requests, please try again later"

// maxClientIDLength limits client ID length to prevent abuse.
const maxClientIDLength = 128

// Middleware limits requests per client with a Redis sliding window.
type Middleware struct {
	config  Config
	limiter *Limiter
	logger  types.Logger
}

// New creates a rate limiting middleware around limiter.
func New(limiter *Limiter, logger types.Logger, opts ...Option) *Middleware {
	return &Middleware{
		config:  newConfig(opts),
		limiter: limiter,
		logger:  logger,
	}
}

// Config returns the effective configuration.
func (m *Middleware) Config() Config {
	return m.config
}

// Handler returns the Fiber handler enforcing the limit.
// Redis failures let the request through.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if slices.Contains(m.config.SkipPaths, c.Path()) {
			return c.Next()
		}

		clientID := m.clientID(c)
		result, err := m.limiter.Allow(c.UserContext(), clientID, m.config.Limit, m.config.Window)
		if err != nil {
			m.logger.Error("Rate limit check failed", "client_id", clientID, "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.logger.Warn("Rate limit exceeded",
				"client_id", clientID,
				"limit", result.Limit,
				"reset_at", result.ResetAt)

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(result.RetryAfter(time.Now())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": MsgTooManyRequests,
			})
		}

		return c.Next()
	}
}

// clientID prefers the client ID header, then the remote IP.
func (m *Middleware) clientID(c *fiber.Ctx) string {
	if id := c.Get(m.config.ClientIDHeader); id != "" {
		if len(id) > maxClientIDLength {
			id = id[:maxClientIDLength]
		}
		return "client:" + id
	}
	if ip := c.IP(); ip != "" {
		return "ip:" + ip
	}
	return m.config.FallbackClientID
}
