package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/example/todo-list/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Live update frame types.
const (
	TypeTaskCreated       = "task_created"
	TypeTaskUpdated       = "task_updated"
	TypeTaskStatusChanged = "task_status_changed"
	TypeTaskDeleted       = "task_deleted"
)

// LiveUpdate is the frame sent to live feed clients.
type LiveUpdate struct {
	Type      string     `json:"type"`
	TaskID    int64      `json:"task_id"`
	Task      *task.Task `json:"task,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// BroadcastModule pushes task events to WebSocket clients.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
	logger    types.Logger
}

var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule(logger types.Logger) *BroadcastModule {
	return &BroadcastModule{
		hub:    NewHub(logger),
		logger: logger,
	}
}

func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start runs the hub.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast hub running")
	return nil
}

// Stop closes every live connection and waits for the hub to exit.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast hub stopped", "clients", clientCount)
	return nil
}

func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskCreatedV1, m.handleTaskCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskUpdatedV1, m.handleTaskUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskDeletedV1, m.handleTaskDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated", "TaskUpdated", "TaskStatusChanged", "TaskDeleted"})
	return nil
}

func (m *BroadcastModule) handleTaskCreated(_ context.Context, ev events.TaskCreatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(LiveUpdate{Type: TypeTaskCreated, TaskID: ev.TaskID, Task: ev.Task, Timestamp: ev.Timestamp})
	return nil
}

func (m *BroadcastModule) handleTaskUpdated(_ context.Context, ev events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(LiveUpdate{Type: TypeTaskUpdated, TaskID: ev.TaskID, Task: ev.Task, Timestamp: ev.Timestamp})
	return nil
}

func (m *BroadcastModule) handleTaskStatusChanged(_ context.Context, ev events.TaskStatusChangedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(LiveUpdate{Type: TypeTaskStatusChanged, TaskID: ev.TaskID, Task: ev.Task, Timestamp: ev.Timestamp})
	return nil
}

func (m *BroadcastModule) handleTaskDeleted(_ context.Context, ev events.TaskDeletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(LiveUpdate{Type: TypeTaskDeleted, TaskID: ev.TaskID, Timestamp: ev.Timestamp})
	return nil
}

// Hub returns the WebSocket hub for the API module to use.
func (m *BroadcastModule) Hub() *Hub {
	return m.hub
}
