package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/example/todo-list/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.frames...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub, cancel
}

func TestHub_BroadcastToAllClients(t *testing.T) {
	hub, _ := startHub(t)

	a, b := &fakeConn{}, &fakeConn{}
	require.True(t, hub.Register(NewClient(a)))
	require.True(t, hub.Register(NewClient(b)))

	hub.Broadcast(LiveUpdate{Type: TypeTaskDeleted, TaskID: 7})

	for _, conn := range []*fakeConn{a, b} {
		assert.Eventually(t, func() bool { return len(conn.received()) == 1 }, time.Second, 10*time.Millisecond)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(conn.received()[0], &frame))
		assert.Equal(t, TypeTaskDeleted, frame["type"])
		assert.Equal(t, float64(7), frame["task_id"])
		assert.NotContains(t, frame, "task")
	}
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHub_Unregister(t *testing.T) {
	hub, _ := startHub(t)

	conn := &fakeConn{}
	client := NewClient(conn)
	require.True(t, hub.Register(client))
	hub.Unregister(client)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(LiveUpdate{Type: TypeTaskCreated, TaskID: 1})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, conn.received())
}

func TestHub_DropsFailingClients(t *testing.T) {
	hub, _ := startHub(t)

	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	healthy := &fakeConn{}
	require.True(t, hub.Register(NewClient(broken)))
	require.True(t, hub.Register(NewClient(healthy)))
	// Register returns once the hub has the client, not once it is counted.
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(LiveUpdate{Type: TypeTaskUpdated, TaskID: 2})

	assert.Eventually(t, broken.isClosed, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(healthy.received()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := &fakeConn{}
	require.True(t, hub.Register(NewClient(conn)))

	cancel()
	hub.Wait()

	assert.True(t, conn.isClosed())
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Register(NewClient(&fakeConn{})))

	// Must not block once stopped.
	hub.Broadcast(LiveUpdate{Type: TypeTaskCreated})
	hub.Unregister(NewClient(&fakeConn{}))
}

func TestBroadcastModule_EventsBecomeFrames(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	t.Cleanup(func() { _ = m.Stop(ctx) })

	conn := &fakeConn{}
	require.True(t, m.Hub().Register(NewClient(conn)))

	snapshot := &task.Task{ID: 3, Title: "Ship it", Priority: task.PriorityHigh, Status: task.StatusCompleted}
	now := time.Now()

	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: 3, Task: snapshot, Timestamp: now}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: 3, Task: snapshot, Timestamp: now}, nil))
	require.NoError(t, m.handleTaskStatusChanged(ctx, events.TaskStatusChangedEvent{TaskID: 3, Status: task.StatusCompleted, Task: snapshot, Timestamp: now}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: 3, Timestamp: now}, nil))

	assert.Eventually(t, func() bool { return len(conn.received()) == 4 }, time.Second, 10*time.Millisecond)

	wantTypes := []string{TypeTaskCreated, TypeTaskUpdated, TypeTaskStatusChanged, TypeTaskDeleted}
	for i, raw := range conn.received() {
		var update LiveUpdate
		require.NoError(t, json.Unmarshal(raw, &update))
		assert.Equal(t, wantTypes[i], update.Type)
		assert.Equal(t, int64(3), update.TaskID)
		if update.Type == TypeTaskDeleted {
			assert.Nil(t, update.Task)
		} else {
			require.NotNil(t, update.Task)
			assert.Equal(t, "Ship it", update.Task.Title)
		}
	}

	health := m.Health(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, 1, health.Details["connected_clients"])
}
