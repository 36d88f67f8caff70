package task

import (
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/example/todo-list/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// busPublisher publishes task events on the mono event bus.
// Publishing is best-effort: failures are logged, never returned.
type busPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

var _ Publisher = (*busPublisher)(nil)

func newBusPublisher(bus mono.EventBus, logger types.Logger) *busPublisher {
	return &busPublisher{bus: bus, logger: logger}
}

func (p *busPublisher) TaskCreated(t *task.Task) {
	event := events.TaskCreatedEvent{
		EventID:   uuid.NewString(),
		TaskID:    t.ID,
		Task:      t,
		Timestamp: time.Now(),
	}
	if err := events.TaskCreatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish TaskCreated event", "task_id", t.ID, "error", err)
	}
}

func (p *busPublisher) TaskUpdated(t *task.Task) {
	event := events.TaskUpdatedEvent{
		EventID:   uuid.NewString(),
		TaskID:    t.ID,
		Task:      t,
		Timestamp: time.Now(),
	}
	if err := events.TaskUpdatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish TaskUpdated event", "task_id", t.ID, "error", err)
	}
}

func (p *busPublisher) TaskStatusChanged(t *task.Task) {
	event := events.TaskStatusChangedEvent{
		EventID:   uuid.NewString(),
		TaskID:    t.ID,
		Status:    t.Status,
		Task:      t,
		Timestamp: time.Now(),
	}
	if err := events.TaskStatusChangedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish TaskStatusChanged event", "task_id", t.ID, "error", err)
	}
}

func (p *busPublisher) TaskDeleted(id int64) {
	event := events.TaskDeletedEvent{
		EventID:   uuid.NewString(),
		TaskID:    id,
		Timestamp: time.Now(),
	}
	if err := events.TaskDeletedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish TaskDeleted event", "task_id", id, "error", err)
	}
}
