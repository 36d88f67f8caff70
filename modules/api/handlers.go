package api

import (
	"errors"
	"strconv"

	"github.com/example/todo-list/domain/task"
	"github.com/example/todo-list/modules/broadcast"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Response messages.
const (
	MsgTaskDeleted     = "Task deleted successfully"
	MsgInvalidBody     = "Invalid request body"
	MsgInternalError   = "Internal server error"
	MsgLiveUnavailable = "Live updates are not enabled"
)

func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api")
	if limit := m.rateLimiter(); limit != nil {
		api.Use(limit)
	}
	api.Get("/cache/stats", m.cacheStats)

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Patch("/:id/status", m.setTaskStatus)
	tasks.Delete("/:id", m.deleteTask)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/tasks", m.liveFeed)
}

// listTasks handles GET /api/tasks?status=&priority=.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	filter := task.ParseFilter(c.Query("status"), c.Query("priority"))

	tasks, err := m.tasks.ListTasks(c.UserContext(), filter)
	if err != nil {
		return m.writeError(c, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return c.JSON(tasks)
}

// getTask handles GET /api/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return notFound(c)
	}

	t, err := m.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(t)
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var in task.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, MsgInvalidBody)
	}

	t, err := m.tasks.CreateTask(c.UserContext(), in)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// updateTask handles PUT /api/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return notFound(c)
	}

	var in task.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, MsgInvalidBody)
	}

	t, err := m.tasks.UpdateTask(c.UserContext(), id, in)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(t)
}

// setTaskStatus handles PATCH /api/tasks/:id/status.
func (m *APIModule) setTaskStatus(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return notFound(c)
	}

	// A body that does not parse carries no valid status either.
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, task.MsgInvalidStatus)
	}

	t, err := m.tasks.SetTaskStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(t)
}

// deleteTask handles DELETE /api/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return notFound(c)
	}

	if err := m.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: MsgTaskDeleted})
}

// cacheStats handles GET /api/cache/stats.
func (m *APIModule) cacheStats(c *fiber.Ctx) error {
	if m.cacheModule == nil || m.cacheModule.Cache() == nil {
		return c.JSON(CacheStatsResponse{Enabled: false})
	}
	stats := m.cacheModule.Cache().Stats()
	return c.JSON(CacheStatsResponse{Enabled: true, Stats: &stats})
}

// healthHandler handles GET /health. It answers 503 when any module is unhealthy.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Modules: make(map[string]ModuleHealth, len(m.checks)),
	}

	for name, checker := range m.checks {
		h := checker.Health(c.UserContext())
		resp.Modules[name] = ModuleHealth{Healthy: h.Healthy, Message: h.Message, Details: h.Details}
		if !h.Healthy {
			resp.Status = "unhealthy"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// liveFeed handles GET /ws/tasks. Frames only flow from server to client;
// reads just detect the close.
func (m *APIModule) liveFeed(c *fiber.Ctx) error {
	if m.broadcaster == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, MsgLiveUnavailable)
	}
	hub := m.broadcaster.Hub()

	return websocket.New(func(conn *websocket.Conn) {
		client := broadcast.NewClient(conn)
		if !hub.Register(client) {
			return
		}
		defer hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					m.logger.Warn("Live feed connection error", "client_id", client.ID, "error", err)
				}
				return
			}
		}
	})(c)
}

// writeError maps a task service error to an HTTP response.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		return badRequest(c, ve.Message)
	case errors.Is(err, task.ErrNotFound):
		return notFound(c)
	}

	m.logger.Error("Task request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
		"error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: MsgInternalError})
}

// taskID parses the :id route parameter. Anything but a positive integer
// cannot name a task.
func taskID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: message})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: task.MsgNotFound})
}
