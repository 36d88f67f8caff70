package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/example/todo-list/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

// Cache is the subset of the Redis cache the service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Publisher announces committed task mutations.
type Publisher interface {
	TaskCreated(t *task.Task)
	TaskUpdated(t *task.Task)
	TaskStatusChanged(t *task.Task)
	TaskDeleted(id int64)
}

// Service implements the task store operations on top of a Repository.
// Reads go through the cache when one is attached; every write invalidates it.
type Service struct {
	repo      task.Repository
	cache     Cache
	publisher Publisher
	sf        singleflight.Group
	logger    types.Logger

	// gen counts invalidations. A read that saw an older generation must
	// not fill the cache. fillMu makes check-and-fill atomic against
	// invalidation.
	gen    atomic.Uint64
	fillMu sync.RWMutex
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service. Cache and publisher are optional.
func NewService(repo task.Repository, logger types.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetCache attaches a read cache.
func (s *Service) SetCache(c Cache) {
	s.cache = c
}

// SetPublisher attaches an event publisher.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

func cacheKeyByID(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}

func cacheKeyList(f task.Filter) string {
	return "list:" + f.StatusOrAll() + ":" + f.PriorityOrAll()
}

// ListTasks returns tasks matching f ordered by creation time, newest first.
func (s *Service) ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error) {
	key := cacheKeyList(f)

	var cached []task.Task
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.gen.Load()
	v, err := s.load(ctx, key, gen, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	tasks := v.([]task.Task)

	s.fill(ctx, key, gen, tasks)
	return tasks, nil
}

// GetTask returns a single task or task.ErrNotFound.
func (s *Service) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	key := cacheKeyByID(id)

	var cached task.Task
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	gen := s.gen.Load()
	v, err := s.load(ctx, key, gen, func(ctx context.Context) (any, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	t := v.(*task.Task).Clone()

	s.fill(ctx, key, gen, t)
	return t, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

// load collapses concurrent store reads of key. Callers only share a read
// started in the same generation, and the read outlives any one caller's
// cancellation.
func (s *Service) load(ctx context.Context, key string, gen uint64, read func(context.Context) (any, error)) (any, error) {
	flightKey := key + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := s.sf.Do(flightKey, func() (any, error) {
		return read(context.WithoutCancel(ctx))
	})
	return v, err
}

// fill caches value unless the cache was invalidated after gen was read.
func (s *Service) fill(ctx context.Context, key string, gen uint64, value any) {
	if s.cache == nil {
		return
	}
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()

	if s.gen.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

// CreateTask validates in, inserts a pending task and returns the stored row.
func (s *Service) CreateTask(ctx context.Context, in task.Input) (*task.Task, error) {
	t, err := task.PrepareCreate(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	stored, err := s.repo.Get(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back task %d: %w", t.ID, err)
	}

	if s.publisher != nil {
		s.publisher.TaskCreated(stored)
	}
	s.logger.Info("Task created", "task_id", stored.ID, "priority", stored.Priority)
	return stored, nil
}

// UpdateTask replaces every mutable field of task id with in.
func (s *Service) UpdateTask(ctx context.Context, id int64, in task.Input) (*task.Task, error) {
	t, err := task.PrepareUpdate(id, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.TaskUpdated(stored)
	}
	s.logger.Info("Task updated", "task_id", id)
	return stored, nil
}

// SetTaskStatus moves task id to status, which must be pending or completed.
func (s *Service) SetTaskStatus(ctx context.Context, id int64, status string) (*task.Task, error) {
	st, err := task.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, st); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.TaskStatusChanged(stored)
	}
	s.logger.Info("Task status changed", "task_id", id, "status", st)
	return stored, nil
}

// DeleteTask removes task id, or returns task.ErrNotFound.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	if s.publisher != nil {
		s.publisher.TaskDeleted(id)
	}
	s.logger.Info("Task deleted", "task_id", id)
	return nil
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// invalidate drops every cached list plus the given task ids. Reads
// already in flight can no longer fill the cache.
func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	s.gen.Add(1)

	if s.cache == nil {
		return
	}
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = cacheKeyByID(id)
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("Cache invalidation failed", "keys", keys, "error", err)
		}
	}
	if err := s.cache.DeletePattern(ctx, "list:*"); err != nil {
		s.logger.Warn("Cache invalidation failed", "pattern", "list:*", "error", err)
	}
}

// isNotFound reports whether err means the task does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, task.ErrNotFound)
}
