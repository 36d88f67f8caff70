package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todo-list/domain/task"
	"gorm.io/gorm"
)

// GormRepository stores tasks through gorm. It backs the sqlite and mysql drivers.
type GormRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*GormRepository)(nil)

// NewGormRepository wraps an open gorm connection.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&task.Task{})
}

// List returns tasks matching f, newest first.
func (r *GormRepository) List(ctx context.Context, f task.Filter) ([]task.Task, error) {
	q := r.db.WithContext(ctx).Model(&task.Task{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}

	tasks := make([]task.Task, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	for i := range tasks {
		normalize(&tasks[i])
	}
	return tasks, nil
}

// Get retrieves a task by id.
func (r *GormRepository) Get(ctx context.Context, id int64) (*task.Task, error) {
	var t task.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// Create inserts t, filling in ID and CreatedAt.
func (r *GormRepository) Create(ctx context.Context, t *task.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of row t.ID.
func (r *GormRepository) Update(ctx context.Context, t *task.Task) error {
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}

	err := r.db.WithContext(ctx).
		Model(&task.Task{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"due_date":    due,
			"priority":    string(t.Priority),
			"status":      string(t.Status),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// SetStatus changes only the status column.
func (r *GormRepository) SetStatus(ctx context.Context, id int64, status task.Status) error {
	err := r.db.WithContext(ctx).
		Model(&task.Task{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// Delete removes a task. A missing row yields task.ErrNotFound.
func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&task.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// normalize maps a zero due date scanned from NULL back to absent.
func normalize(t *task.Task) {
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
}
