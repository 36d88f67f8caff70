package main

import (
	"context"
	"log"
	"os"

	apimod "github.com/example/todo-list/modules/api"
	broadcastmod "github.com/example/todo-list/modules/broadcast"
	cachemod "github.com/example/todo-list/modules/cache"
	taskmod "github.com/example/todo-list/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== Todo List ===")
	log.Printf("Database: %s (%s)", cfg.DBDriver, cfg.DBDSN)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	if cfg.CacheEnabled() {
		log.Printf("Redis: %s (cache TTL %s, rate limit %d/%s)", cfg.RedisAddr, cfg.CacheTTL, cfg.RateLimit, cfg.RateWindow)
	} else {
		log.Println("Redis: disabled (no cache, no rate limiting)")
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	logger := app.Logger()

	var cacheModule *cachemod.Module
	if cfg.CacheEnabled() {
		cacheModule = cachemod.NewModule(cfg.cacheConfig(), logger.WithModule("cache"))
	}
	taskModule := taskmod.NewModule(cfg.storeConfig(), cacheModule, logger.WithModule("task"))
	broadcastModule := broadcastmod.NewModule(logger.WithModule("broadcast"))
	apiModule := apimod.NewModule(apimod.Config{
		Addr:       cfg.Addr(),
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
		AccessLog:  cfg.AccessLog,
	}, cacheModule, broadcastModule, logger.WithModule("api"))

	apiModule.AddHealthCheck("task", taskModule)
	apiModule.AddHealthCheck("broadcast", broadcastModule)

	// Providers before consumers
	if cacheModule != nil {
		apiModule.AddHealthCheck("cache", cacheModule)
		app.Register(cacheModule)
	}
	app.Register(taskModule)
	app.Register(broadcastModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("Open http://localhost:%d", cfg.HTTPPort)
	log.Println("Endpoints:")
	log.Println("  GET    /health                - Health check")
	log.Println("  GET    /api/tasks             - List tasks (?status=&priority=)")
	log.Println("  POST   /api/tasks             - Create task")
	log.Println("  GET    /api/tasks/:id         - Get task")
	log.Println("  PUT    /api/tasks/:id         - Replace task")
	log.Println("  PATCH  /api/tasks/:id/status  - Set task status")
	log.Println("  DELETE /api/tasks/:id         - Delete task")
	log.Println("  GET    /api/cache/stats       - Cache statistics")
	log.Println("  GET    /ws/tasks              - Live task updates (WebSocket)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
