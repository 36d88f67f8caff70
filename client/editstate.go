package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/example/todo-list/domain/task"
)

// MsgTitleRequired rejects a form before it is sent.
const MsgTitleRequired = "Task title is required"

// Submit button labels.
const (
	LabelAdd    = "Add Task"
	LabelUpdate = "Update Task"
)

// EditState records which task, if any, the form is editing.
// The zero value is not editing.
type EditState struct {
	id     int64
	status task.Status
}

// None is the state with no task being edited.
func None() EditState {
	return EditState{}
}

// Begin starts editing t. It is the only way into the editing state, so
// every update carries the task's current status.
func (s EditState) Begin(t *task.Task) EditState {
	return EditState{id: t.ID, status: t.Status}
}

// Cleared ends editing.
func (s EditState) Cleared() EditState {
	return None()
}

func (s EditState) IsEditing() bool {
	return s.id != 0
}

// ID is the task being edited, or 0.
func (s EditState) ID() int64 {
	return s.id
}

// SubmitLabel is the text of the form's submit button.
func (s EditState) SubmitLabel() string {
	if s.IsEditing() {
		return LabelUpdate
	}
	return LabelAdd
}

// Form holds what the user typed.
type Form struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// FormOf fills a form from t, as the edit button does.
func FormOf(t *task.Task) Form {
	f := Form{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.String()
	}
	return f
}

// Payload trims the form into a request body. An empty due date is sent as null.
func (f Form) Payload() (task.Input, error) {
	in := task.Input{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Priority:    f.Priority,
	}
	if in.Title == "" {
		return task.Input{}, &task.ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if due := strings.TrimSpace(f.DueDate); due != "" {
		in.DueDate = &due
	}
	return in, nil
}

// TaskWriter is the part of Client that Submit needs.
type TaskWriter interface {
	Create(ctx context.Context, in task.Input) (*task.Task, error)
	Update(ctx context.Context, id int64, in task.Input) (*task.Task, error)
}

// Submit creates a task, or updates the one being edited. A form rejected
// before sending leaves state as it was; otherwise the returned state is
// cleared whether or not the request succeeded.
func Submit(ctx context.Context, api TaskWriter, state EditState, form Form) (EditState, error) {
	in, err := form.Payload()
	if err != nil {
		return state, err
	}

	if state.IsEditing() {
		in.Status = string(state.status)
		_, err = api.Update(ctx, state.id, in)
	} else {
		_, err = api.Create(ctx, in)
	}
	return state.Cleared(), err
}

// Filters are the list view's status and priority selections.
// Empty means "all".
type Filters struct {
	Status   string
	Priority string
}

// Query encodes the selections as the list endpoint expects them.
func (f Filters) Query() url.Values {
	q := url.Values{}
	q.Set("status", orAll(f.Status))
	q.Set("priority", orAll(f.Priority))
	return q
}

func orAll(s string) string {
	if s == "" {
		return task.FilterAll
	}
	return s
}
