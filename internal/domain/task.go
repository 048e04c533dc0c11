package domain

import "unicode/utf8"

// Task is a unit of work that can be attached to jobs.
// A zero ID means the task has not been persisted yet.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EntityID returns the task identifier, zero when absent.
func (t Task) EntityID() int64 {
	return t.ID
}

// IsNew reports whether the task has no identifier yet.
func (t Task) IsNew() bool {
	return t.ID == 0
}

// Validate checks field lengths and the identifier sign.
func (t *Task) Validate() error {
	if t.ID < 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}
	if utf8.RuneCountInString(t.Title) > MaxTextLength {
		return NewValidationError("title", "is too long", ErrTextTooLong)
	}
	if utf8.RuneCountInString(t.Description) > MaxTextLength {
		return NewValidationError("description", "is too long", ErrTextTooLong)
	}
	return nil
}

// TaskPatch is a merge-patch for a Task: nil fields are left untouched.
type TaskPatch struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ApplyTo copies every non-nil field of the patch onto t.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}
