package api

import "github.com/example/todo-list/modules/cache"

// StatusRequest is the body of PATCH /api/tasks/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the HTTP response for operations without a body of their own.
type MessageResponse struct {
	Message string `json:"message"`
}

// ModuleHealth is one module's entry in HealthResponse.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse is the HTTP response for GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

// CacheStatsResponse is the HTTP response for GET /api/cache/stats.
type CacheStatsResponse struct {
	Enabled bool                 `json:"enabled"`
	Stats   *cache.StatsSnapshot `json:"stats,omitempty"`
}
