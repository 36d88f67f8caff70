package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todo-list/domain/task"
)

// Request-reply service names registered by the task module.
const (
	ServiceListTasks     = "list-tasks"
	ServiceGetTask       = "get-task"
	ServiceCreateTask    = "create-task"
	ServiceUpdateTask    = "update-task"
	ServiceSetTaskStatus = "set-task-status"
	ServiceDeleteTask    = "delete-task"
)

// ErrorKind classifies a failure carried in a service reply.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

// ServiceError is the failure envelope of a task service reply.
type ServiceError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

// newServiceError classifies err for transport.
func newServiceError(err error) *ServiceError {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		return &ServiceError{Kind: KindValidation, Field: ve.Field, Message: ve.Message}
	case isNotFound(err):
		return &ServiceError{Kind: KindNotFound, Message: task.MsgNotFound}
	}
	return &ServiceError{Kind: KindInternal, Message: err.Error()}
}

// Err converts the envelope back into a domain error.
func (e *ServiceError) Err(service string) error {
	switch e.Kind {
	case KindValidation:
		return &task.ValidationError{Field: e.Field, Message: e.Message}
	case KindNotFound:
		return task.ErrNotFound
	}
	return fmt.Errorf("%s service failed: %s", service, e.Message)
}

// ListTasksRequest is the request for listing tasks.
// Empty or "all" selectors mean no filter.
type ListTasksRequest struct {
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []task.Task   `json:"tasks"`
	Error *ServiceError `json:"error,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID int64 `json:"id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Input task.Input `json:"input"`
}

// UpdateTaskRequest is the request for a full replace of a task.
type UpdateTaskRequest struct {
	ID    int64      `json:"id"`
	Input task.Input `json:"input"`
}

// SetTaskStatusRequest is the request for changing a task's status.
type SetTaskStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

// TaskResponse is the response for operations returning a single task.
type TaskResponse struct {
	Task  *task.Task    `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// TaskPort is the contract the HTTP layer uses to reach the task domain.
// Errors are task.ErrNotFound, *task.ValidationError, or internal failures.
type TaskPort interface {
	ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error)
	GetTask(ctx context.Context, id int64) (*task.Task, error)
	CreateTask(ctx context.Context, in task.Input) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, in task.Input) (*task.Task, error)
	SetTaskStatus(ctx context.Context, id int64, status string) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
