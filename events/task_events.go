package events

import (
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted after a task is inserted.
type TaskCreatedEvent struct {
	EventID   string     `json:"event_id"`
	TaskID    int64      `json:"task_id"`
	Task      *task.Task `json:"task"`
	Timestamp time.Time  `json:"timestamp"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after a full replace of a task's fields.
type TaskUpdatedEvent struct {
	EventID   string     `json:"event_id"`
	TaskID    int64      `json:"task_id"`
	Task      *task.Task `json:"task"`
	Timestamp time.Time  `json:"timestamp"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskStatusChangedEvent is emitted after a status patch.
type TaskStatusChangedEvent struct {
	EventID   string      `json:"event_id"`
	TaskID    int64       `json:"task_id"`
	Status    task.Status `json:"status"`
	Task      *task.Task  `json:"task"`
	Timestamp time.Time   `json:"timestamp"`
}

// TaskStatusChangedV1 is the typed event definition for status changes.
// Subject: events.task.v1.task-status-changed
var TaskStatusChangedV1 = helper.EventDefinition[TaskStatusChangedEvent](
	"task", "TaskStatusChanged", "v1",
)

// TaskDeletedEvent is emitted after a task row is removed.
type TaskDeletedEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    int64     `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
