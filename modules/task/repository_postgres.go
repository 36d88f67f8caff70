package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/todo-list/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL CHECK (title <> ''),
		description TEXT NOT NULL DEFAULT '',
		due_date    DATE,
		priority    VARCHAR(10) NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		status      VARCHAR(10) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks (priority)`,
}

const taskColumns = `id, title, description, due_date, priority, status, created_at`

// PostgresRepository stores tasks in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ task.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository wraps an open pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the tasks table and its indexes if missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate tasks table: %w", err)
		}
	}
	return nil
}

// List returns tasks matching f, newest first.
func (r *PostgresRepository) List(ctx context.Context, f task.Filter) ([]task.Task, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get retrieves a task by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// Create inserts t, filling in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, t *task.Task) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, due_date, priority, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.Title, t.Description, dateParam(t.DueDate), string(t.Priority), string(t.Status),
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", translatePgError(err))
	}
	return nil
}

// Update overwrites every mutable column of row t.ID.
func (r *PostgresRepository) Update(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, due_date = $3, priority = $4, status = $5
		 WHERE id = $6`,
		t.Title, t.Description, dateParam(t.DueDate), string(t.Priority), string(t.Status), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", translatePgError(err))
	}
	return nil
}

// SetStatus changes only the status column.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status task.Status) error {
	_, err := r.pool.Exec(ctx, `UPDATE tasks SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", translatePgError(err))
	}
	return nil
}

// Delete removes a task. A missing row yields task.ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Ping checks the pool.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t        task.Task
		due      pgtype.Date
		priority string
		status   string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &priority, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := task.DateOf(due.Time)
		t.DueDate = &d
	}
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	return &t, nil
}

func dateParam(d *task.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// translatePgError turns CHECK constraint violations into validation errors.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23514" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "priority"):
		return &task.ValidationError{Field: "priority", Message: task.MsgInvalidPriority}
	case strings.Contains(pgErr.ConstraintName, "status"):
		return &task.ValidationError{Field: "status", Message: task.MsgInvalidStatus}
	case strings.Contains(pgErr.ConstraintName, "title"):
		return &task.ValidationError{Field: "title", Message: task.MsgTitleRequired}
	}
	return err
}
