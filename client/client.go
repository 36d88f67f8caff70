// Package client talks to the task REST API and carries the form and
// edit-mode logic the browser client follows.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/gofiber/fiber/v2"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsValidation reports whether err is a 400 from the API or a form rejected before sending.
func IsValidation(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadRequest
	}
	return task.IsValidation(err)
}

// Client is a task API client.
type Client struct {
	baseURL  string
	timeout  time.Duration
	clientID string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Context deadlines that are sooner win.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClientID sends id in X-Client-ID, which the server rate limits by.
func WithClientID(id string) Option {
	return func(c *Client) {
		c.clientID = id
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the tasks matching f, newest first.
func (c *Client) List(ctx context.Context, f Filters) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, fiber.MethodGet, "/api/tasks?"+f.Query().Encode(), nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Get returns one task.
func (c *Client) Get(ctx context.Context, id int64) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, fiber.MethodGet, taskPath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create adds a task and returns it as stored.
func (c *Client) Create(ctx context.Context, in task.Input) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, fiber.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces a task's mutable fields and returns it as stored.
func (c *Client) Update(ctx context.Context, id int64, in task.Input) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, fiber.MethodPut, taskPath(id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetStatus changes a task's status.
func (c *Client) SetStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error) {
	var t task.Task
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, fiber.MethodPatch, taskPath(id)+"/status", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	a.Timeout(timeout)

	if c.clientID != "" {
		a.Set("X-Client-ID", c.clientID)
	}
	if body != nil {
		a.JSON(body)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &e); err != nil || e.Error == "" {
			e.Error = http.StatusText(code)
		}
		return &APIError{StatusCode: code, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
