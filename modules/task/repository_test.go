package task

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/example/todo-list/domain/task"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepositoryContract exercises behavior every task.Repository must share.
func testRepositoryContract(t *testing.T, repo task.Repository) {
	ctx := context.Background()

	due := task.NewDate(2024, time.May, 20)
	first := &task.Task{Title: "first", Priority: task.PriorityHigh, Status: task.StatusPending, DueDate: &due}
	second := &task.Task{Title: "second", Priority: task.PriorityLow, Status: task.StatusCompleted}

	t.Run("create assigns id and created_at", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))

		got, err = repo.Get(ctx, second.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, second.ID+1000)
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("list order and filters", func(t *testing.T) {
		all, err := repo.List(ctx, task.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID)
		assert.Equal(t, first.ID, all[1].ID)

		high, err := repo.List(ctx, task.Filter{Priority: task.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, high, 1)
		assert.Equal(t, first.ID, high[0].ID)

		none, err := repo.List(ctx, task.Filter{Status: "x'; DROP TABLE tasks; --"})
		require.NoError(t, err)
		assert.Empty(t, none)

		stillThere, err := repo.List(ctx, task.Filter{})
		require.NoError(t, err)
		assert.Len(t, stillThere, 2)
	})

	t.Run("update clears due date", func(t *testing.T) {
		replaced := &task.Task{
			ID:       first.ID,
			Title:    "first edited",
			Priority: task.PriorityMedium,
			Status:   task.StatusCompleted,
		}
		require.NoError(t, repo.Update(ctx, replaced))

		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first edited", got.Title)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, task.StatusCompleted, got.Status)
	})

	t.Run("set status", func(t *testing.T) {
		require.NoError(t, repo.SetStatus(ctx, second.ID, task.StatusPending))
		got, err := repo.Get(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusPending, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, first.ID))
		assert.ErrorIs(t, repo.Delete(ctx, first.ID), task.ErrNotFound)

		all, err := repo.List(ctx, task.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestGormRepository_SQLite(t *testing.T) {
	testRepositoryContract(t, setupTestRepo(t))
}

// Requires PostgreSQL; set TEST_DATABASE_URL to run.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, _ = pool.Exec(ctx, "DROP TABLE IF EXISTS tasks")
	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS tasks") })

	testRepositoryContract(t, repo)

	t.Run("check constraint maps to validation", func(t *testing.T) {
		err := repo.Create(ctx, &task.Task{Title: "bad", Priority: "urgent", Status: task.StatusPending})
		require.Error(t, err)
		assert.True(t, task.IsValidation(err))
	})
}

func TestOpenRepository_UnsupportedDriver(t *testing.T) {
	_, err := OpenRepository(context.Background(), StoreConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestWithParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"root@tcp(localhost:3306)/todoapp", "root@tcp(localhost:3306)/todoapp?parseTime=true"},
		{"root@tcp(localhost:3306)/todoapp?charset=utf8mb4", "root@tcp(localhost:3306)/todoapp?charset=utf8mb4&parseTime=true"},
		{"root@tcp(localhost:3306)/todoapp?parseTime=false", "root@tcp(localhost:3306)/todoapp?parseTime=false"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withParseTime(tt.in))
	}
}
