package domain

import "unicode/utf8"

// Job groups tasks under a title with an optional salary range.
type Job struct {
	ID        int64  `json:"id,omitempty"`
	JobTitle  string `json:"jobTitle"`
	MinSalary *int64 `json:"minSalary,omitempty"`
	MaxSalary *int64 `json:"maxSalary,omitempty"`
	Tasks     []Task `json:"tasks,omitempty"`
}

// EntityID returns the job identifier, zero when absent.
func (j Job) EntityID() int64 {
	return j.ID
}

// IsNew reports whether the job has no identifier yet.
func (j Job) IsNew() bool {
	return j.ID == 0
}

// TaskIDs returns the identifiers of the related tasks in order.
func (j Job) TaskIDs() []int64 {
	ids := make([]int64, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// Validate checks the title length, the salary range and the task references.
func (j *Job) Validate() error {
	if j.ID < 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}
	if utf8.RuneCountInString(j.JobTitle) > MaxTextLength {
		return NewValidationError("jobTitle", "is too long", ErrTextTooLong)
	}
	if j.MinSalary != nil && *j.MinSalary < 0 {
		return NewValidationError("minSalary", "must not be negative", ErrInvalidSalary)
	}
	if j.MaxSalary != nil && *j.MaxSalary < 0 {
		return NewValidationError("maxSalary", "must not be negative", ErrInvalidSalary)
	}
	if j.MinSalary != nil && j.MaxSalary != nil && *j.MinSalary > *j.MaxSalary {
		return NewValidationError("minSalary", "must not exceed maxSalary", ErrInvalidSalary)
	}
	for _, t := range j.Tasks {
		if t.ID <= 0 {
			return NewValidationError("tasks", "must reference persisted tasks", ErrInvalidID)
		}
	}
	return nil
}

// JobPatch is a merge-patch for a Job. The task relation is not patchable.
type JobPatch struct {
	ID        int64   `json:"id"`
	JobTitle  *string `json:"jobTitle,omitempty"`
	MinSalary *int64  `json:"minSalary,omitempty"`
	MaxSalary *int64  `json:"maxSalary,omitempty"`
}

// ApplyTo copies every non-nil field of the patch onto j.
func (p JobPatch) ApplyTo(j *Job) {
	if p.JobTitle != nil {
		j.JobTitle = *p.JobTitle
	}
	if p.MinSalary != nil {
		j.MinSalary = p.MinSalary
	}
	if p.MaxSalary != nil {
		j.MaxSalary = p.MaxSalary
	}
}
