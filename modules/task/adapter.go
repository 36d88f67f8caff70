package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/todo-list/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's request-reply services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort backed by the task module's ServiceContainer,
// as received through SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// call sends req to service and decodes the reply into resp.
func call[Req, Resp any](ctx context.Context, a *taskAdapter, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error) {
	req := ListTasksRequest{Status: f.StatusOrAll(), Priority: f.PriorityOrAll()}
	var resp ListTasksResponse
	if err := call(ctx, a, ServiceListTasks, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.Err(ServiceListTasks)
	}
	if resp.Tasks == nil {
		resp.Tasks = []task.Task{}
	}
	return resp.Tasks, nil
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	req := GetTaskRequest{ID: id}
	var resp TaskResponse
	if err := call(ctx, a, ServiceGetTask, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(ServiceGetTask, resp)
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, in task.Input) (*task.Task, error) {
	req := CreateTaskRequest{Input: in}
	var resp TaskResponse
	if err := call(ctx, a, ServiceCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(ServiceCreateTask, resp)
}

// UpdateTask replaces a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, id int64, in task.Input) (*task.Task, error) {
	req := UpdateTaskRequest{ID: id, Input: in}
	var resp TaskResponse
	if err := call(ctx, a, ServiceUpdateTask, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(ServiceUpdateTask, resp)
}

// SetTaskStatus changes a task's status via the set-task-status service.
func (a *taskAdapter) SetTaskStatus(ctx context.Context, id int64, status string) (*task.Task, error) {
	req := SetTaskStatusRequest{ID: id, Status: status}
	var resp TaskResponse
	if err := call(ctx, a, ServiceSetTaskStatus, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(ServiceSetTaskStatus, resp)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) error {
	req := DeleteTaskRequest{ID: id}
	var resp DeleteTaskResponse
	if err := call(ctx, a, ServiceDeleteTask, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error.Err(ServiceDeleteTask)
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", id)
	}
	return nil
}

func taskOrError(service string, resp TaskResponse) (*task.Task, error) {
	if resp.Error != nil {
		return nil, resp.Error.Err(service)
	}
	if resp.Task == nil {
		return nil, fmt.Errorf("%s service returned no task", service)
	}
	return resp.Task, nil
}
