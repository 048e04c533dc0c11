package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/events"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

// Index keeps tasks and jobs together with an in-memory bleve index of
// their searchable fields. Bleve selects the matching IDs; the entities
// themselves are served from memory so results can be sorted and paged like
// the job store.
type Index struct {
	mu       sync.RWMutex
	tasks    map[int64]domain.Task
	jobs     map[int64]domain.Job
	taskText bleve.Index
	jobText  bleve.Index
	logger   *slog.Logger
}

// NewIndex creates an empty index. If logger is nil, a default logger will be used.
func NewIndex(log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}
	taskText, jobText, err := newTextIndexes()
	if err != nil {
		return nil, err
	}
	return &Index{
		tasks:    make(map[int64]domain.Task),
		jobs:     make(map[int64]domain.Job),
		taskText: taskText,
		jobText:  jobText,
		logger:   log.With(slog.String("component", "search_index")),
	}, nil
}

func newTextIndexes() (bleve.Index, bleve.Index, error) {
	taskText, err := bleve.NewMemOnly(newTaskMapping())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task index: %w", err)
	}
	jobText, err := bleve.NewMemOnly(newJobMapping())
	if err != nil {
		_ = taskText.Close()
		return nil, nil, fmt.Errorf("failed to create job index: %w", err)
	}
	return taskText, jobText, nil
}

var _ events.EventHandler = (*Index)(nil)

// HandleEvent mirrors a task or job write into the index.
func (i *Index) HandleEvent(ctx context.Context, event *events.EntityChangedEvent) error {
	log := logger.FromContextOrDefault(ctx, i.logger)

	var err error
	switch event.EntityType {
	case events.EntityTask:
		if event.Action == events.ActionDeleted {
			err = i.RemoveTask(event.EntityID)
			break
		}
		var task domain.Task
		if err := event.UnmarshalPayload(&task); err != nil {
			return fmt.Errorf("failed to decode task payload: %w", err)
		}
		err = i.IndexTask(task)
	case events.EntityJob:
		if event.Action == events.ActionDeleted {
			err = i.RemoveJob(event.EntityID)
			break
		}
		var job domain.Job
		if err := event.UnmarshalPayload(&job); err != nil {
			return fmt.Errorf("failed to decode job payload: %w", err)
		}
		err = i.IndexJob(job)
	default:
		log.Debug("ignoring event for unindexed entity", slog.String("entity_type", event.EntityType))
		return nil
	}
	if err != nil {
		return err
	}

	log.Debug("search index updated",
		slog.String("entity_type", event.EntityType),
		slog.String("action", string(event.Action)),
		slog.Int64("entity_id", event.EntityID))
	return nil
}

// IndexTask adds or replaces a task, including its copies inside jobs.
func (i *Index) IndexTask(task domain.Task) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.taskText.Index(docID(task.ID), taskDocument(task)); err != nil {
		return fmt.Errorf("failed to index task %d: %w", task.ID, err)
	}
	i.tasks[task.ID] = task
	for id, job := range i.jobs {
		for n := range job.Tasks {
			if job.Tasks[n].ID == task.ID {
				job.Tasks[n] = task
			}
		}
		i.jobs[id] = job
	}
	return nil
}

// RemoveTask drops a task and detaches it from indexed jobs.
func (i *Index) RemoveTask(id int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.taskText.Delete(docID(id)); err != nil {
		return fmt.Errorf("failed to remove task %d: %w", id, err)
	}
	delete(i.tasks, id)
	for jobID, job := range i.jobs {
		job.Tasks = slices.DeleteFunc(job.Tasks, func(t domain.Task) bool { return t.ID == id })
		i.jobs[jobID] = job
	}
	return nil
}

// IndexJob adds or replaces a job.
func (i *Index) IndexJob(job domain.Job) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.jobText.Index(docID(job.ID), jobDocument(job)); err != nil {
		return fmt.Errorf("failed to index job %d: %w", job.ID, err)
	}
	job.Tasks = slices.Clone(job.Tasks)
	i.jobs[job.ID] = job
	return nil
}

// RemoveJob drops a job.
func (i *Index) RemoveJob(id int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.jobText.Delete(docID(id)); err != nil {
		return fmt.Errorf("failed to remove job %d: %w", id, err)
	}
	delete(i.jobs, id)
	return nil
}

// Reindex replaces the whole index content.
func (i *Index) Reindex(ctx context.Context, tasks []domain.Task, jobs []domain.Job) error {
	taskText, jobText, err := newTextIndexes()
	if err != nil {
		return err
	}

	taskBatch := taskText.NewBatch()
	taskMap := make(map[int64]domain.Task, len(tasks))
	for _, t := range tasks {
		if err := taskBatch.Index(docID(t.ID), taskDocument(t)); err != nil {
			return fmt.Errorf("failed to index task %d: %w", t.ID, err)
		}
		taskMap[t.ID] = t
	}
	jobBatch := jobText.NewBatch()
	jobMap := make(map[int64]domain.Job, len(jobs))
	for _, j := range jobs {
		if err := jobBatch.Index(docID(j.ID), jobDocument(j)); err != nil {
			return fmt.Errorf("failed to index job %d: %w", j.ID, err)
		}
		j.Tasks = slices.Clone(j.Tasks)
		jobMap[j.ID] = j
	}
	if err := taskText.Batch(taskBatch); err != nil {
		return fmt.Errorf("failed to rebuild task index: %w", err)
	}
	if err := jobText.Batch(jobBatch); err != nil {
		return fmt.Errorf("failed to rebuild job index: %w", err)
	}

	i.mu.Lock()
	oldTasks, oldJobs := i.taskText, i.jobText
	i.tasks, i.jobs = taskMap, jobMap
	i.taskText, i.jobText = taskText, jobText
	i.mu.Unlock()
	_ = oldTasks.Close()
	_ = oldJobs.Close()

	logger.FromContextOrDefault(ctx, i.logger).Info("search index rebuilt",
		slog.Int("tasks", len(tasks)),
		slog.Int("jobs", len(jobs)))
	return nil
}

// Close releases the bleve indexes.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	taskErr := i.taskText.Close()
	if err := i.jobText.Close(); err != nil {
		return err
	}
	return taskErr
}

// SearchTasks returns the tasks matching raw, ordered by ID.
func (i *Index) SearchTasks(raw string) ([]domain.Task, error) {
	q, err := parseQuery(raw)
	if err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	ids, err := matchingIDs(i.taskText, q, len(i.tasks))
	if err != nil {
		return nil, err
	}
	result := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := i.tasks[id]; ok {
			result = append(result, t)
		}
	}
	slices.SortFunc(result, func(a, b domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

// CountTasks returns the number of tasks matching raw.
func (i *Index) CountTasks(raw string) (int64, error) {
	tasks, err := i.SearchTasks(raw)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}

// SearchJobs returns one page of the jobs matching raw, and the total
// number of matches. Sorting accepts the same fields as the job store.
func (i *Index) SearchJobs(raw string, page store.PageRequest) ([]domain.Job, int64, error) {
	less, err := jobComparator(page.Sort)
	if err != nil {
		return nil, 0, err
	}
	q, err := parseQuery(raw)
	if err != nil {
		return nil, 0, err
	}

	i.mu.RLock()
	ids, err := matchingIDs(i.jobText, q, len(i.jobs))
	if err != nil {
		i.mu.RUnlock()
		return nil, 0, err
	}
	matched := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := i.jobs[id]; ok {
			j.Tasks = slices.Clone(j.Tasks)
			matched = append(matched, j)
		}
	}
	i.mu.RUnlock()

	slices.SortFunc(matched, less)

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := start + min(page.Size, len(matched)-start)
	return matched[start:end], total, nil
}

// CountJobs returns the number of jobs matching raw.
func (i *Index) CountJobs(raw string) (int64, error) {
	_, total, err := i.SearchJobs(raw, store.NewPageRequest(0, 1))
	return total, err
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func jobComparator(sort []store.SortOrder) (func(a, b domain.Job) int, error) {
	keys := make([]func(a, b domain.Job) int, 0, len(sort)+1)
	for _, s := range sort {
		var c func(a, b domain.Job) int
		switch s.Field {
		case "id":
			c = func(a, b domain.Job) int { return cmp.Compare(a.ID, b.ID) }
		case "jobTitle":
			c = func(a, b domain.Job) int { return cmp.Compare(a.JobTitle, b.JobTitle) }
		case "minSalary":
			c = func(a, b domain.Job) int { return compareOptional(a.MinSalary, b.MinSalary) }
		case "maxSalary":
			c = func(a, b domain.Job) int { return compareOptional(a.MaxSalary, b.MaxSalary) }
		default:
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidSort, s.Field)
		}
		if s.Desc {
			asc := c
			c = func(a, b domain.Job) int { return -asc(a, b) }
		}
		keys = append(keys, c)
	}
	keys = append(keys, func(a, b domain.Job) int { return cmp.Compare(a.ID, b.ID) })

	return func(a, b domain.Job) int {
		for _, k := range keys {
			if r := k(a, b); r != 0 {
				return r
			}
		}
		return 0
	}, nil
}

// compareOptional orders nil values first.
func compareOptional(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}
