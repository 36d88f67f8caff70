package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/todo-list/domain/task"
	"github.com/example/todo-list/events"
	"github.com/example/todo-list/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule owns the task store and exposes it as request-reply services.
type TaskModule struct {
	storeCfg    StoreConfig
	repo        task.Repository
	service     *Service
	cacheModule *cache.Module
	eventBus    mono.EventBus
	logger      types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a task module that opens its store during Init.
// cacheModule may be nil to run without Redis.
func NewModule(storeCfg StoreConfig, cacheModule *cache.Module, logger types.Logger) *TaskModule {
	return &TaskModule{
		storeCfg:    storeCfg,
		cacheModule: cacheModule,
		logger:      logger,
	}
}

// NewModuleWithService creates a task module around an existing service.
// Useful for tests.
func NewModuleWithService(svc *Service, logger types.Logger) *TaskModule {
	return &TaskModule{
		repo:    svc.repo,
		service: svc,
		logger:  logger,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

// Dependencies orders the task module after the cache when caching is enabled.
func (m *TaskModule) Dependencies() []string {
	if m.cacheModule != nil {
		return []string{"cache"}
	}
	return nil
}

func (m *TaskModule) SetDependencyServiceContainer(_ string, _ mono.ServiceContainer) {}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Init opens and migrates the configured store.
func (m *TaskModule) Init(_ mono.ServiceContainer) error {
	if m.service != nil {
		return nil
	}

	repo, err := OpenRepository(context.Background(), m.storeCfg)
	if err != nil {
		return err
	}
	m.repo = repo
	m.service = NewService(repo, m.logger)

	m.logger.Info("Task store ready", "driver", m.storeCfg.Driver)
	return nil
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSetTaskStatus, json.Unmarshal, json.Marshal, m.setTaskStatus,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSetTaskStatus, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	m.logger.Info("Registered services",
		"services", []string{
			ServiceListTasks, ServiceGetTask, ServiceCreateTask,
			ServiceUpdateTask, ServiceSetTaskStatus, ServiceDeleteTask,
		})
	return nil
}

// Start attaches the cache and event bus, which are only ready once every
// module has been initialized.
func (m *TaskModule) Start(_ context.Context) error {
	if m.service == nil {
		return fmt.Errorf("task service not initialized")
	}

	if m.cacheModule != nil {
		if c := m.cacheModule.Cache(); c != nil {
			m.service.SetCache(c)
		} else {
			m.logger.Warn("Cache module has no cache, reads go straight to the store")
		}
	}

	if m.eventBus != nil {
		m.service.SetPublisher(newBusPublisher(m.eventBus, m.logger))
	} else {
		m.logger.Warn("Event bus not set, task events will not be published")
	}

	m.logger.Info("Task module started", "cached", m.service.cache != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.repo != nil {
		if err := m.repo.Close(); err != nil {
			m.logger.Error("Failed to close task store", "error", err)
			return err
		}
	}
	m.logger.Info("Task module stopped")
	return nil
}

// Health pings the task store.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "task store not initialized"}
	}
	if err := m.service.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"driver": m.storeCfg.Driver},
	}
}

// Service returns the task service. It is nil before Init.
func (m *TaskModule) Service() *Service {
	return m.service
}
