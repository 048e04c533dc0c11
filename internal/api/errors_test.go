package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "task not found", err: service.ErrTaskNotFound, expected: http.StatusNotFound},
		{name: "job not found", err: service.ErrJobNotFound, expected: http.StatusNotFound},
		{name: "store not found", err: store.ErrTaskNotFound, expected: http.StatusNotFound},
		{name: "duplicate", err: store.ErrDuplicate, expected: http.StatusConflict},
		{name: "id present", err: domain.NewValidationError("id", "x", domain.ErrIDPresent), expected: http.StatusBadRequest},
		{name: "invalid entity", err: &service.ServiceError{Service: "job", Op: "save", Err: store.ErrInvalidEntity}, expected: http.StatusBadRequest},
		{name: "invalid sort", err: fmt.Errorf("%w: foo", store.ErrInvalidSort), expected: http.StatusBadRequest},
		{name: "invalid query", err: fmt.Errorf("%w: title:(", store.ErrInvalidQuery), expected: http.StatusBadRequest},
		{name: "validator error", err: newValidator().Struct(TaskRequest{Title: string(make([]byte, 300))}), expected: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "An unexpected error occurred"},
		{name: "task not found", err: service.ErrTaskNotFound, expected: "Task not found"},
		{name: "job not found", err: service.ErrJobNotFound, expected: "Job not found"},
		{name: "id present", err: domain.NewValidationError("id", "x", domain.ErrIDPresent), expected: "A new entity cannot already have an ID"},
		{name: "id missing", err: domain.NewValidationError("id", "x", domain.ErrIDMissing), expected: "Invalid id: null"},
		{name: "id mismatch", err: domain.NewValidationError("id", "x", domain.ErrIDMismatch), expected: "Invalid ID"},
		{name: "field validation", err: domain.NewValidationError("title", "is too long", domain.ErrTextTooLong), expected: "Invalid title: is too long"},
		{name: "validator error", err: newValidator().Struct(JobRequest{Tasks: []TaskRef{{ID: 0}}}), expected: "Invalid id: out of range"},
		{name: "invalid entity", err: store.ErrInvalidEntity, expected: "Invalid entity data"},
		{name: "invalid query", err: store.ErrInvalidQuery, expected: "Invalid search query"},
		{name: "raw error is hidden", err: errors.New("pq: password=hunter2"), expected: "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}
