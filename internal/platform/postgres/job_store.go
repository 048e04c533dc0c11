package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

// jobSortColumns maps public sort fields to columns.
var jobSortColumns = map[string]string{
	"id":        "id",
	"jobTitle":  "job_title",
	"minSalary": "min_salary",
	"maxSalary": "max_salary",
}

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO job (job_title, min_salary, max_salary)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		nullString(job.JobTitle),
		nullInt64(job.MinSalary),
		nullInt64(job.MaxSalary),
	).Scan(&job.ID)
	if err != nil {
		log.Error("failed to create job", slog.String("error", err.Error()))
		return storeError("job", "create", err)
	}

	log.Debug("job created", slog.Int64("job_id", job.ID))
	return nil
}

// Update implements store.JobStore.Update
func (s *PostgresJobStore) Update(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("job_id", job.ID))
		return err
	}

	query := `
		UPDATE job
		SET job_title = $1, min_salary = $2, max_salary = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		nullString(job.JobTitle),
		nullInt64(job.MinSalary),
		nullInt64(job.MaxSalary),
		job.ID,
	)
	if err != nil {
		log.Error("failed to update job",
			slog.String("error", err.Error()),
			slog.Int64("job_id", job.ID))
		return storeError("job", "update", err)
	}
	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// GetByID implements store.JobStore.GetByID
func (s *PostgresJobStore) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, job_title, min_salary, max_salary
		FROM job
		WHERE id = $1
	`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.Int64("job_id", id))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.Int64("job_id", id))
		return nil, MapError(err)
	}

	jobs := []domain.Job{*job}
	if err := s.attachTasks(ctx, jobs); err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

// Exists implements store.JobStore.Exists
func (s *PostgresJobStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM job WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.JobStore.List
func (s *PostgresJobStore) List(ctx context.Context, page store.PageRequest, eager bool) ([]domain.Job, error) {
	orderBy, err := store.OrderByClause(page.Sort, jobSortColumns, "id")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, job_title, min_salary, max_salary
		FROM job
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, orderBy)

	jobs, err := s.queryJobs(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	if eager {
		if err := s.attachTasks(ctx, jobs); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// ListAll implements store.JobStore.ListAll
func (s *PostgresJobStore) ListAll(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.queryJobs(ctx, `SELECT id, job_title, min_salary, max_salary FROM job ORDER BY id`)
	if err != nil {
		return nil, err
	}
	if err := s.attachTasks(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Count implements store.JobStore.Count
func (s *PostgresJobStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job`).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// ReplaceTasks implements store.JobStore.ReplaceTasks
func (s *PostgresJobStore) ReplaceTasks(ctx context.Context, jobID int64, taskIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM rel_job__task WHERE job_id = $1`, jobID); err != nil {
		log.Error("failed to clear job tasks",
			slog.String("error", err.Error()),
			slog.Int64("job_id", jobID))
		return storeError("job", "replace_tasks", err)
	}

	for _, taskID := range taskIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO rel_job__task (job_id, task_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			jobID, taskID)
		if err != nil {
			if IsForeignKeyViolation(err) {
				log.Warn("job references unknown task",
					slog.Int64("job_id", jobID),
					slog.Int64("task_id", taskID))
				return fmt.Errorf("%w: task with ID %d not found", store.ErrInvalidEntity, taskID)
			}
			log.Error("failed to link task to job",
				slog.String("error", err.Error()),
				slog.Int64("job_id", jobID),
				slog.Int64("task_id", taskID))
			return storeError("job", "replace_tasks", err)
		}
	}
	return nil
}

// Delete implements store.JobStore.Delete
func (s *PostgresJobStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete job",
			slog.String("error", err.Error()),
			slog.Int64("job_id", id))
		return storeError("job", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresJobStore) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// attachTasks loads the task relation for every job in one query.
func (s *PostgresJobStore) attachTasks(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	ids := make([]int64, len(jobs))
	index := make(map[int64]int, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
		index[j.ID] = i
	}

	query := `
		SELECT r.job_id, t.id, t.title, t.description
		FROM rel_job__task r
		JOIN task t ON t.id = r.task_id
		WHERE r.job_id = ANY($1)
		ORDER BY r.job_id, t.id
	`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load job tasks", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			jobID       int64
			task        domain.Task
			title       sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&jobID, &task.ID, &title, &description); err != nil {
			return err
		}
		task.Title = title.String
		task.Description = description.String
		i := index[jobID]
		jobs[i].Tasks = append(jobs[i].Tasks, task)
	}
	return rows.Err()
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job       domain.Job
		title     sql.NullString
		minSalary sql.NullInt64
		maxSalary sql.NullInt64
	)
	if err := row.Scan(&job.ID, &title, &minSalary, &maxSalary); err != nil {
		return nil, err
	}
	job.JobTitle = title.String
	job.MinSalary = int64Ptr(minSalary)
	job.MaxSalary = int64Ptr(maxSalary)
	return &job, nil
}
