package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/events"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

// TaskSearcher is the part of the search index the task service queries.
type TaskSearcher interface {
	SearchTasks(query string) ([]domain.Task, error)
	CountTasks(query string) (int64, error)
}

// TaskService provides task-related operations
type TaskService interface {
	// Save creates a new task. The task must not carry an ID.
	Save(ctx context.Context, task domain.Task) (*domain.Task, error)

	// Update replaces the task identified by id. The body ID must be
	// present, equal to id, and name an existing task.
	Update(ctx context.Context, id int64, task domain.Task) (*domain.Task, error)

	// PartialUpdate merges the non-nil fields of patch into the stored task.
	PartialUpdate(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// FindAll returns every task ordered by ID.
	FindAll(ctx context.Context) ([]domain.Task, error)

	// CountAll returns the number of stored tasks.
	CountAll(ctx context.Context) (int64, error)

	// FindOne returns the task with the given ID, or ErrTaskNotFound.
	FindOne(ctx context.Context, id int64) (*domain.Task, error)

	// Delete removes a task, or returns ErrTaskNotFound.
	Delete(ctx context.Context, id int64) error

	// Search returns the tasks matching query in the search index.
	Search(ctx context.Context, query string) ([]domain.Task, error)

	// SearchCount returns the number of tasks matching query.
	SearchCount(ctx context.Context, query string) (int64, error)
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	tx       store.Transactor
	searcher TaskSearcher
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	tx store.Transactor,
	searcher TaskSearcher,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	switch {
	case tasks == nil:
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errNilDependency("tasks")}
	case tx == nil:
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errNilDependency("tx")}
	case searcher == nil:
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errNilDependency("searcher")}
	case emitter == nil:
		return nil, &ServiceError{Service: "task", Op: "create_service", Err: errNilDependency("emitter")}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		tx:       tx,
		searcher: searcher,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// Save implements TaskService.Save
func (s *taskServiceImpl) Save(ctx context.Context, task domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !task.IsNew() {
		return nil, domain.NewValidationError("id", "must be empty for a new task", domain.ErrIDPresent)
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		log.Warn("failed to save task", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "save", err)
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	publish(ctx, log, s.emitter, events.EntityTask, events.ActionCreated, task.ID, task)
	return &task, nil
}

// Update implements TaskService.Update
func (s *taskServiceImpl) Update(ctx context.Context, id int64, task domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkUpdateID(id, task.ID); err != nil {
		return nil, err
	}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		exists, err := txTasks.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewValidationError("id", "does not name an existing task", domain.ErrInvalidID)
		}
		return txTasks.Update(ctx, &task)
	})
	if err != nil {
		log.Warn("failed to update task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, NewServiceError("task", "update", err)
	}

	log.Info("task updated", slog.Int64("task_id", id))
	publish(ctx, log, s.emitter, events.EntityTask, events.ActionUpdated, task.ID, task)
	return &task, nil
}

// PartialUpdate implements TaskService.PartialUpdate
func (s *taskServiceImpl) PartialUpdate(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkUpdateID(id, patch.ID); err != nil {
		return nil, err
	}

	var updated *domain.Task
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		existing, err := txTasks.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return domain.NewValidationError("id", "does not name an existing task", domain.ErrInvalidID)
			}
			return err
		}
		patch.ApplyTo(existing)
		if err := txTasks.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		log.Warn("failed to patch task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, NewServiceError("task", "partial_update", err)
	}

	log.Info("task patched", slog.Int64("task_id", id))
	publish(ctx, log, s.emitter, events.EntityTask, events.ActionUpdated, updated.ID, updated)
	return updated, nil
}

// FindAll implements TaskService.FindAll
func (s *taskServiceImpl) FindAll(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, NewServiceError("task", "find_all", err)
	}
	return tasks, nil
}

// CountAll implements TaskService.CountAll
func (s *taskServiceImpl) CountAll(ctx context.Context) (int64, error) {
	n, err := s.tasks.Count(ctx)
	if err != nil {
		return 0, NewServiceError("task", "count_all", err)
	}
	return n, nil
}

// FindOne implements TaskService.FindOne
func (s *taskServiceImpl) FindOne(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("task", "find_one", err)
	}
	return task, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, id); err != nil {
		log.Warn("failed to delete task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return NewServiceError("task", "delete", err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	publish(ctx, log, s.emitter, events.EntityTask, events.ActionDeleted, id, nil)
	return nil
}

// Search implements TaskService.Search
func (s *taskServiceImpl) Search(ctx context.Context, query string) ([]domain.Task, error) {
	logger.FromContextOrDefault(ctx, s.logger).Debug("searching tasks", slog.String("query", query))
	tasks, err := s.searcher.SearchTasks(query)
	if err != nil {
		return nil, NewServiceError("task", "search", err)
	}
	return tasks, nil
}

// SearchCount implements TaskService.SearchCount
func (s *taskServiceImpl) SearchCount(ctx context.Context, query string) (int64, error) {
	n, err := s.searcher.CountTasks(query)
	if err != nil {
		return 0, NewServiceError("task", "search_count", err)
	}
	return n, nil
}
