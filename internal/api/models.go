package api

import (
	"github.com/phrazzld/taskdesk/internal/domain"
)

// TaskRequest is the body of POST and PUT /api/tasks.
type TaskRequest struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"       validate:"max=255"`
	Description string `json:"description" validate:"max=255"`
}

func (r TaskRequest) toDomain() domain.Task {
	return domain.Task{ID: r.ID, Title: r.Title, Description: r.Description}
}

// TaskRef references an existing task from a job body.
type TaskRef struct {
	ID          int64  `json:"id"                    validate:"gt=0"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// JobRequest is the body of POST and PUT /api/jobs.
type JobRequest struct {
	ID        int64     `json:"id,omitempty"`
	JobTitle  string    `json:"jobTitle"  validate:"max=255"`
	MinSalary *int64    `json:"minSalary" validate:"omitempty,gte=0"`
	MaxSalary *int64    `json:"maxSalary" validate:"omitempty,gte=0"`
	Tasks     []TaskRef `json:"tasks"     validate:"dive"`
}

func (r JobRequest) toDomain() domain.Job {
	job := domain.Job{
		ID:        r.ID,
		JobTitle:  r.JobTitle,
		MinSalary: r.MinSalary,
		MaxSalary: r.MaxSalary,
	}
	if len(r.Tasks) > 0 {
		job.Tasks = make([]domain.Task, len(r.Tasks))
		for i, t := range r.Tasks {
			job.Tasks[i] = domain.Task{ID: t.ID, Title: t.Title, Description: t.Description}
		}
	}
	return job
}
