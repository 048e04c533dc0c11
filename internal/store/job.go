package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskdesk/internal/domain"
)

// JobStore defines the interface for job data persistence, including the
// many-to-many relation between jobs and tasks.
type JobStore interface {
	// Create inserts the job row and assigns its generated ID.
	// The task relation is written separately with ReplaceTasks.
	Create(ctx context.Context, job *domain.Job) error

	// Update overwrites the scalar fields of an existing job.
	// Returns ErrJobNotFound if no job has the given ID.
	Update(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job with its related tasks.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Job, error)

	// Exists reports whether a job with the given ID is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// List returns one page of jobs. When eager is true each job carries
	// its related tasks. Returns ErrInvalidSort for unknown sort fields.
	List(ctx context.Context, page PageRequest, eager bool) ([]domain.Job, error)

	// ListAll returns every job with related tasks, ordered by ID.
	ListAll(ctx context.Context) ([]domain.Job, error)

	// Count returns the number of stored jobs.
	Count(ctx context.Context) (int64, error)

	// ReplaceTasks sets the job's task relation to exactly taskIDs.
	// Must run inside a transaction to be atomic.
	ReplaceTasks(ctx context.Context, jobID int64, taskIDs []int64) error

	// Delete removes a job and its relation rows.
	// Returns ErrJobNotFound if the job does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a JobStore bound to the given transaction.
	WithTx(tx *sql.Tx) JobStore
}
