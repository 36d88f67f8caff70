package task

import (
	"context"

	"github.com/example/todo-list/domain/task"
	"github.com/go-monolith/mono"
)

// Request-reply handlers. Domain failures travel in the reply's error
// envelope; the returned Go error is reserved for transport problems.

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx, task.ParseFilter(req.Status, req.Priority))
	if err != nil {
		return ListTasksResponse{Error: m.replyError(ServiceListTasks, err)}, nil
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.GetTask(ctx, req.ID)
	if err != nil {
		return TaskResponse{Error: m.replyError(ServiceGetTask, err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.CreateTask(ctx, req.Input)
	if err != nil {
		return TaskResponse{Error: m.replyError(ServiceCreateTask, err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.UpdateTask(ctx, req.ID, req.Input)
	if err != nil {
		return TaskResponse{Error: m.replyError(ServiceUpdateTask, err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) setTaskStatus(ctx context.Context, req SetTaskStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.SetTaskStatus(ctx, req.ID, req.Status)
	if err != nil {
		return TaskResponse{Error: m.replyError(ServiceSetTaskStatus, err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.DeleteTask(ctx, req.ID); err != nil {
		return DeleteTaskResponse{Error: m.replyError(ServiceDeleteTask, err)}, nil
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) replyError(service string, err error) *ServiceError {
	se := newServiceError(err)
	if se.Kind == KindInternal {
		m.logger.Error("Task service failed", "service", service, "error", err)
	}
	return se
}
