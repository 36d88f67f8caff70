package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/example/todo-list/middleware/ratelimit"
	"github.com/example/todo-list/modules/broadcast"
	"github.com/example/todo-list/modules/cache"
	"github.com/example/todo-list/modules/task"
	"github.com/example/todo-list/web"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Config configures the HTTP surface.
type Config struct {
	Addr string
	// RateLimit requests per RateWindow per client on /api. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

// HealthChecker is any module that reports its health.
type HealthChecker interface {
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule serves the REST API, the live feed and the browser client.
type APIModule struct {
	cfg         Config
	app         *fiber.App
	tasks       task.TaskPort
	cacheModule *cache.Module
	broadcaster *broadcast.BroadcastModule
	checks      map[string]HealthChecker
	logger      types.Logger
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. cacheModule and broadcaster may be nil.
func NewModule(cfg Config, cacheModule *cache.Module, broadcaster *broadcast.BroadcastModule, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:         cfg,
		cacheModule: cacheModule,
		broadcaster: broadcaster,
		checks:      make(map[string]HealthChecker),
		logger:      logger,
	}
}

func (m *APIModule) Name() string {
	return "api"
}

// Dependencies lists the task module plus whichever optional modules are wired.
func (m *APIModule) Dependencies() []string {
	deps := []string{"task"}
	if m.cacheModule != nil {
		deps = append(deps, "cache")
	}
	if m.broadcaster != nil {
		deps = append(deps, "broadcast")
	}
	return deps
}

func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.tasks = task.NewTaskAdapter(container)
	}
}

// SetTaskPort replaces the task service the handlers call.
func (m *APIModule) SetTaskPort(port task.TaskPort) {
	m.tasks = port
}

// AddHealthCheck includes a module in GET /health.
func (m *APIModule) AddHealthCheck(name string, checker HealthChecker) {
	m.checks[name] = checker
}

// App builds the Fiber application on first use.
func (m *APIModule) App() *fiber.App {
	if m.app == nil {
		m.app = m.newApp()
	}
	return m.app
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Todo List",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if m.cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Client-ID",
	}))

	m.setupRoutes(app)

	app.Use("/", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		Index:  "index.html",
		Browse: false,
	}))
	return app
}

// rateLimiter returns the /api limiter, or nil when Redis or a limit is not configured.
func (m *APIModule) rateLimiter() fiber.Handler {
	if m.cfg.RateLimit <= 0 || m.cacheModule == nil || m.cacheModule.Client() == nil {
		return nil
	}
	limiter := ratelimit.NewLimiter(m.cacheModule.Client(), ratelimit.DefaultKeyPrefix)
	mw := ratelimit.New(limiter, m.logger, ratelimit.WithLimit(m.cfg.RateLimit, m.cfg.RateWindow))
	cfg := mw.Config()
	m.logger.Info("Rate limiting enabled",
		"limit", cfg.Limit,
		"window", cfg.Window,
		"client_header", cfg.ClientIDHeader)
	return mw.Handler()
}

// Start serves HTTP on the configured address.
func (m *APIModule) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("task service dependency not set")
	}

	app := m.App()

	errChan := make(chan error, 1)
	go func() {
		if err := app.Listen(m.cfg.Addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

// errorHandler renders errors that escape a handler, including panics caught by recover.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := MsgInternalError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		m.logger.Error("Unhandled HTTP error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err)
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
