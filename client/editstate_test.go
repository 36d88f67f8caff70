package client

import (
	"context"
	"errors"
	"testing"

	"github.com/example/todo-list/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op string
	id int64
	in task.Input
}

type recordingWriter struct {
	calls []call
	err   error
}

func (w *recordingWriter) Create(_ context.Context, in task.Input) (*task.Task, error) {
	w.calls = append(w.calls, call{op: "create", in: in})
	return &task.Task{ID: 1}, w.err
}

func (w *recordingWriter) Update(_ context.Context, id int64, in task.Input) (*task.Task, error) {
	w.calls = append(w.calls, call{op: "update", id: id, in: in})
	return &task.Task{ID: id}, w.err
}

func TestEditState_Transitions(t *testing.T) {
	s := None()
	assert.False(t, s.IsEditing())
	assert.Equal(t, int64(0), s.ID())
	assert.Equal(t, LabelAdd, s.SubmitLabel())

	editing := s.Begin(&task.Task{ID: 42, Status: task.StatusCompleted})
	assert.True(t, editing.IsEditing())
	assert.Equal(t, int64(42), editing.ID())
	assert.Equal(t, LabelUpdate, editing.SubmitLabel())

	assert.False(t, s.IsEditing(), "Begin must not mutate the receiver")

	cleared := editing.Cleared()
	assert.Equal(t, None(), cleared)
	assert.True(t, editing.IsEditing(), "Cleared must not mutate the receiver")

	assert.Equal(t, EditState{}, None())
}

func TestForm_Payload(t *testing.T) {
	t.Run("trims and nulls empty due date", func(t *testing.T) {
		in, err := Form{Title: "  Buy milk ", Description: " 2 litres  ", Priority: "low"}.Payload()
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", in.Title)
		assert.Equal(t, "2 litres", in.Description)
		assert.Equal(t, "low", in.Priority)
		assert.Nil(t, in.DueDate)
		assert.Empty(t, in.Status)
	})

	t.Run("keeps due date", func(t *testing.T) {
		in, err := Form{Title: "x", DueDate: "2025-06-01"}.Payload()
		require.NoError(t, err)
		require.NotNil(t, in.DueDate)
		assert.Equal(t, "2025-06-01", *in.DueDate)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := Form{Title: "   "}.Payload()
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, MsgTitleRequired, err.Error())
	})
}

func TestFormOf(t *testing.T) {
	due := task.NewDate(2025, 6, 1)
	f := FormOf(&task.Task{Title: "a", Description: "b", Priority: task.PriorityHigh, DueDate: &due})
	assert.Equal(t, Form{Title: "a", Description: "b", Priority: "high", DueDate: "2025-06-01"}, f)

	assert.Empty(t, FormOf(&task.Task{Title: "a"}).DueDate)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when not editing", func(t *testing.T) {
		w := &recordingWriter{}
		next, err := Submit(ctx, w, None(), Form{Title: "New"})
		require.NoError(t, err)
		assert.False(t, next.IsEditing())
		require.Len(t, w.calls, 1)
		assert.Equal(t, "create", w.calls[0].op)
		assert.Equal(t, "New", w.calls[0].in.Title)
	})

	t.Run("updates the edited task and keeps its status", func(t *testing.T) {
		w := &recordingWriter{}
		state := None().Begin(&task.Task{ID: 9, Status: task.StatusCompleted})

		next, err := Submit(ctx, w, state, Form{Title: "Edited"})
		require.NoError(t, err)
		assert.Equal(t, None(), next)
		require.Len(t, w.calls, 1)
		assert.Equal(t, "update", w.calls[0].op)
		assert.Equal(t, int64(9), w.calls[0].id)
		assert.Equal(t, "completed", w.calls[0].in.Status)
	})

	t.Run("failed request still clears", func(t *testing.T) {
		w := &recordingWriter{err: errors.New("boom")}
		state := None().Begin(&task.Task{ID: 3, Status: task.StatusPending})
		next, err := Submit(ctx, w, state, Form{Title: "x"})
		assert.Error(t, err)
		assert.False(t, next.IsEditing())
		require.Len(t, w.calls, 1)
		assert.Equal(t, "pending", w.calls[0].in.Status)
	})

	t.Run("rejected form sends nothing and keeps state", func(t *testing.T) {
		w := &recordingWriter{}
		state := None().Begin(&task.Task{ID: 3, Status: task.StatusCompleted})
		next, err := Submit(ctx, w, state, Form{Title: ""})
		assert.True(t, IsValidation(err))
		assert.Equal(t, state, next)
		assert.Empty(t, w.calls)
	})
}

func TestFilters_Query(t *testing.T) {
	assert.Equal(t, "priority=all&status=all", Filters{}.Query().Encode())
	assert.Equal(t, "priority=high&status=completed", Filters{Status: "completed", Priority: "high"}.Query().Encode())
	assert.Equal(t, "priority=all&status=pending", Filters{Status: "pending"}.Query().Encode())
}
