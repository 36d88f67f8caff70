package task

import (
	"context"
	"testing"

	"github.com/example/todo-list/domain/task"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// portConsumer receives the task module's container the way the API module does.
type portConsumer struct {
	container mono.ServiceContainer
}

func (c *portConsumer) Name() string                  { return "task-consumer" }
func (c *portConsumer) Start(_ context.Context) error { return nil }
func (c *portConsumer) Stop(_ context.Context) error  { return nil }
func (c *portConsumer) Dependencies() []string        { return []string{"task"} }
func (c *portConsumer) SetDependencyServiceContainer(dep string, container mono.ServiceContainer) {
	if dep == "task" {
		c.container = container
	}
}

func setupTestAdapter(t *testing.T) TaskPort {
	t.Helper()

	// Embedded NATS carries the request-reply calls.
	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
	)
	require.NoError(t, err)

	consumer := &portConsumer{}
	app.Register(setupTestModule(t))
	app.Register(consumer)

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { _ = app.Stop(context.Background()) })

	require.NotNil(t, consumer.container)
	return NewTaskAdapter(consumer.container)
}

func TestTaskAdapter_RoundTrip(t *testing.T) {
	port := setupTestAdapter(t)
	ctx := context.Background()

	created, err := port.CreateTask(ctx, task.Input{Title: "Over the bus", Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, created.Status)

	got, err := port.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Over the bus", got.Title)

	list, err := port.ListTasks(ctx, task.ParseFilter("all", "high"))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := port.ListTasks(ctx, task.ParseFilter("completed", "all"))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	updated, err := port.UpdateTask(ctx, created.ID, task.Input{Title: "Renamed", Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, task.StatusCompleted, updated.Status)

	reopened, err := port.SetTaskStatus(ctx, created.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, reopened.Status)

	require.NoError(t, port.DeleteTask(ctx, created.ID))
	_, err = port.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskAdapter_Errors(t *testing.T) {
	port := setupTestAdapter(t)
	ctx := context.Background()

	_, err := port.CreateTask(ctx, task.Input{Title: "   "})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))

	_, err = port.SetTaskStatus(ctx, 1, "done")
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))

	assert.ErrorIs(t, port.DeleteTask(ctx, 999), task.ErrNotFound)
}
