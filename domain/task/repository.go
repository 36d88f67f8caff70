package task

import "context"

// Repository persists tasks. Implementations bind every filter value as a
// query parameter and return ErrNotFound for missing ids.
type Repository interface {
	// List returns tasks matching f, newest first.
	List(ctx context.Context, f Filter) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	// Create inserts t and fills in its ID and CreatedAt.
	Create(ctx context.Context, t *Task) error
	// Update replaces the mutable fields of the row with t.ID.
	// It does not report missing rows; callers read back to detect them.
	Update(ctx context.Context, t *Task) error
	SetStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}
