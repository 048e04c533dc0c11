package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskdesk/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create inserts a new task and assigns its generated ID.
	// Returns domain validation errors if the task is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Update overwrites title and description of an existing task.
	// Returns ErrTaskNotFound if no task has the given ID.
	Update(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Exists reports whether a task with the given ID is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// List returns every task ordered by ID.
	List(ctx context.Context) ([]domain.Task, error)

	// Count returns the number of stored tasks.
	Count(ctx context.Context) (int64, error)

	// Delete removes a task. Job relations referencing it are removed by
	// ON DELETE CASCADE. Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
