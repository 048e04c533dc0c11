package sqlite

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

var jobSortColumns = map[string]string{
	"id":        "id",
	"jobTitle":  "job_title",
	"minSalary": "min_salary",
	"maxSalary": "max_salary",
}

const jobColumns = `id, job_title, min_salary, max_salary`

// JobStore implements store.JobStore on SQLite.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a SQLite JobStore. A nil logger falls back to slog.Default.
func NewJobStore(db store.DBTX, logger *slog.Logger) *JobStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store"), slog.String("driver", "sqlite")),
	}
}

var _ store.JobStore = (*JobStore)(nil)

// Create implements store.JobStore.Create
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create", slog.String("error", err.Error()))
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO job (job_title, min_salary, max_salary) VALUES (?, ?, ?)`,
		nullString(job.JobTitle), nullInt64(job.MinSalary), nullInt64(job.MaxSalary))
	if err != nil {
		log.Error("failed to create job", slog.String("error", err.Error()))
		return storeError("job", "create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	job.ID = id
	log.Debug("job created", slog.Int64("job_id", id))
	return nil
}

// Update implements store.JobStore.Update
func (s *JobStore) Update(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("job_id", job.ID))
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE job SET job_title = ?, min_salary = ?, max_salary = ? WHERE id = ?`,
		nullString(job.JobTitle), nullInt64(job.MinSalary), nullInt64(job.MaxSalary), job.ID)
	if err != nil {
		log.Error("failed to update job",
			slog.String("error", err.Error()),
			slog.Int64("job_id", job.ID))
		return storeError("job", "update", err)
	}
	return checkRowsAffected(result, store.ErrJobNotFound)
}

// GetByID implements store.JobStore.GetByID
func (s *JobStore) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get job by ID",
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
func (s *JobStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM job WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.JobStore.List
func (s *JobStore) List(ctx context.Context, page store.PageRequest, eager bool) ([]domain.Job, error) {
	orderBy, err := store.OrderByClause(page.Sort, jobSortColumns, "id")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM job ORDER BY %s LIMIT ? OFFSET ?`, jobColumns, orderBy)
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
func (s *JobStore) ListAll(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.queryJobs(ctx, `SELECT `+jobColumns+` FROM job ORDER BY id`)
	if err != nil {
		return nil, err
	}
	if err := s.attachTasks(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Count implements store.JobStore.Count
func (s *JobStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job`).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// ReplaceTasks implements store.JobStore.ReplaceTasks
func (s *JobStore) ReplaceTasks(ctx context.Context, jobID int64, taskIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM rel_job__task WHERE job_id = ?`, jobID); err != nil {
		log.Error("failed to clear job tasks",
			slog.String("error", err.Error()),
			slog.Int64("job_id", jobID))
		return storeError("job", "replace_tasks", err)
	}

	for _, taskID := range taskIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO rel_job__task (job_id, task_id) VALUES (?, ?)`,
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
func (s *JobStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job WHERE id = ?`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete job",
			slog.String("error", err.Error()),
			slog.Int64("job_id", id))
		return storeError("job", "delete", err)
	}
	return checkRowsAffected(result, store.ErrJobNotFound)
}

// WithTx implements store.JobStore.WithTx
func (s *JobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &JobStore{db: tx, logger: s.logger}
}

func (s *JobStore) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
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
func (s *JobStore) attachTasks(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	args := make([]any, len(jobs))
	index := make(map[int64]int, len(jobs))
	for i, j := range jobs {
		args[i] = j.ID
		index[j.ID] = i
	}

	query := fmt.Sprintf(`
		SELECT r.job_id, t.id, t.title, t.description
		FROM rel_job__task r
		JOIN task t ON t.id = r.task_id
		WHERE r.job_id IN (%s)
		ORDER BY r.job_id, t.id`, placeholders(len(jobs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load job tasks", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var jobID int64
		var title, description sql.NullString
		var task domain.Task
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
