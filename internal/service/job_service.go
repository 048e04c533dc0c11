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

// JobSearcher is the part of the search index the job service queries.
type JobSearcher interface {
	SearchJobs(query string, page store.PageRequest) ([]domain.Job, int64, error)
	CountJobs(query string) (int64, error)
}

// JobService provides job-related operations, including the job's task relation.
type JobService interface {
	// Save creates a job and links the tasks it references.
	Save(ctx context.Context, job domain.Job) (*domain.Job, error)

	// Update replaces the job identified by id and its task relation.
	Update(ctx context.Context, id int64, job domain.Job) (*domain.Job, error)

	// PartialUpdate merges the non-nil fields of patch into the stored job.
	// The task relation is left untouched.
	PartialUpdate(ctx context.Context, id int64, patch domain.JobPatch) (*domain.Job, error)

	// FindAll returns one page of jobs; eager loads their tasks.
	FindAll(ctx context.Context, page store.PageRequest, eager bool) ([]domain.Job, error)

	// CountAll returns the number of stored jobs.
	CountAll(ctx context.Context) (int64, error)

	// FindOne returns the job with its tasks, or ErrJobNotFound.
	FindOne(ctx context.Context, id int64) (*domain.Job, error)

	// Delete removes a job, or returns ErrJobNotFound.
	Delete(ctx context.Context, id int64) error

	// Search returns one page of jobs matching query and the total match count.
	Search(ctx context.Context, query string, page store.PageRequest) ([]domain.Job, int64, error)

	// SearchCount returns the number of jobs matching query.
	SearchCount(ctx context.Context, query string) (int64, error)
}

type jobServiceImpl struct {
	jobs     store.JobStore
	tx       store.Transactor
	searcher JobSearcher
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewJobService creates a JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(
	jobs store.JobStore,
	tx store.Transactor,
	searcher JobSearcher,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (JobService, error) {
	switch {
	case jobs == nil:
		return nil, &ServiceError{Service: "job", Op: "create_service", Err: errNilDependency("jobs")}
	case tx == nil:
		return nil, &ServiceError{Service: "job", Op: "create_service", Err: errNilDependency("tx")}
	case searcher == nil:
		return nil, &ServiceError{Service: "job", Op: "create_service", Err: errNilDependency("searcher")}
	case emitter == nil:
		return nil, &ServiceError{Service: "job", Op: "create_service", Err: errNilDependency("emitter")}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &jobServiceImpl{
		jobs:     jobs,
		tx:       tx,
		searcher: searcher,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "job_service")),
	}, nil
}

// Save implements JobService.Save
// The job row and its relation rows are written in one transaction.
func (s *jobServiceImpl) Save(ctx context.Context, job domain.Job) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !job.IsNew() {
		return nil, domain.NewValidationError("id", "must be empty for a new job", domain.ErrIDPresent)
	}

	var saved *domain.Job
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		if err := txJobs.Create(ctx, &job); err != nil {
			return err
		}
		if err := txJobs.ReplaceTasks(ctx, job.ID, job.TaskIDs()); err != nil {
			return err
		}
		var err error
		saved, err = txJobs.GetByID(ctx, job.ID)
		return err
	})
	if err != nil {
		log.Warn("failed to save job", slog.String("error", err.Error()))
		return nil, NewServiceError("job", "save", err)
	}

	log.Info("job created", slog.Int64("job_id", saved.ID), slog.Int("task_count", len(saved.Tasks)))
	publish(ctx, log, s.emitter, events.EntityJob, events.ActionCreated, saved.ID, saved)
	return saved, nil
}

// Update implements JobService.Update
func (s *jobServiceImpl) Update(ctx context.Context, id int64, job domain.Job) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkUpdateID(id, job.ID); err != nil {
		return nil, err
	}

	var updated *domain.Job
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		exists, err := txJobs.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewValidationError("id", "does not name an existing job", domain.ErrInvalidID)
		}
		if err := txJobs.Update(ctx, &job); err != nil {
			return err
		}
		if err := txJobs.ReplaceTasks(ctx, id, job.TaskIDs()); err != nil {
			return err
		}
		updated, err = txJobs.GetByID(ctx, id)
		return err
	})
	if err != nil {
		log.Warn("failed to update job", slog.String("error", err.Error()), slog.Int64("job_id", id))
		return nil, NewServiceError("job", "update", err)
	}

	log.Info("job updated", slog.Int64("job_id", id))
	publish(ctx, log, s.emitter, events.EntityJob, events.ActionUpdated, id, updated)
	return updated, nil
}

// PartialUpdate implements JobService.PartialUpdate
func (s *jobServiceImpl) PartialUpdate(ctx context.Context, id int64, patch domain.JobPatch) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkUpdateID(id, patch.ID); err != nil {
		return nil, err
	}

	var updated *domain.Job
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		existing, err := txJobs.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return domain.NewValidationError("id", "does not name an existing job", domain.ErrInvalidID)
			}
			return err
		}
		patch.ApplyTo(existing)
		if err := txJobs.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		log.Warn("failed to patch job", slog.String("error", err.Error()), slog.Int64("job_id", id))
		return nil, NewServiceError("job", "partial_update", err)
	}

	log.Info("job patched", slog.Int64("job_id", id))
	publish(ctx, log, s.emitter, events.EntityJob, events.ActionUpdated, id, updated)
	return updated, nil
}

// FindAll implements JobService.FindAll
func (s *jobServiceImpl) FindAll(ctx context.Context, page store.PageRequest, eager bool) ([]domain.Job, error) {
	jobs, err := s.jobs.List(ctx, page, eager)
	if err != nil {
		return nil, NewServiceError("job", "find_all", err)
	}
	return jobs, nil
}

// CountAll implements JobService.CountAll
func (s *jobServiceImpl) CountAll(ctx context.Context) (int64, error) {
	n, err := s.jobs.Count(ctx)
	if err != nil {
		return 0, NewServiceError("job", "count_all", err)
	}
	return n, nil
}

// FindOne implements JobService.FindOne
func (s *jobServiceImpl) FindOne(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("job", "find_one", err)
	}
	return job, nil
}

// Delete implements JobService.Delete
func (s *jobServiceImpl) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.jobs.Delete(ctx, id); err != nil {
		log.Warn("failed to delete job", slog.String("error", err.Error()), slog.Int64("job_id", id))
		return NewServiceError("job", "delete", err)
	}

	log.Info("job deleted", slog.Int64("job_id", id))
	publish(ctx, log, s.emitter, events.EntityJob, events.ActionDeleted, id, nil)
	return nil
}

// Search implements JobService.Search
func (s *jobServiceImpl) Search(ctx context.Context, query string, page store.PageRequest) ([]domain.Job, int64, error) {
	logger.FromContextOrDefault(ctx, s.logger).Debug("searching jobs", slog.String("query", query))
	jobs, total, err := s.searcher.SearchJobs(query, page)
	if err != nil {
		return nil, 0, NewServiceError("job", "search", err)
	}
	return jobs, total, nil
}

// SearchCount implements JobService.SearchCount
func (s *jobServiceImpl) SearchCount(ctx context.Context, query string) (int64, error) {
	n, err := s.searcher.CountJobs(query)
	if err != nil {
		return 0, NewServiceError("job", "search_count", err)
	}
	return n, nil
}
