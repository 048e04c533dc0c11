package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		job     Job
		wantErr error
	}{
		{name: "minimal job", job: Job{JobTitle: "Engineer"}},
		{
			name: "full job",
			job:  Job{JobTitle: "Engineer", MinSalary: int64Ptr(1), MaxSalary: int64Ptr(2), Tasks: []Task{{ID: 1}}},
		},
		{name: "negative min", job: Job{MinSalary: int64Ptr(-1)}, wantErr: ErrInvalidSalary},
		{name: "negative max", job: Job{MaxSalary: int64Ptr(-5)}, wantErr: ErrInvalidSalary},
		{
			name:    "inverted range",
			job:     Job{MinSalary: int64Ptr(10), MaxSalary: int64Ptr(2)},
			wantErr: ErrInvalidSalary,
		},
		{name: "unsaved task reference", job: Job{Tasks: []Task{{Title: "x"}}}, wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJob_TaskIDs(t *testing.T) {
	t.Parallel()

	job := Job{Tasks: []Task{{ID: 4}, {ID: 2}}}
	assert.Equal(t, []int64{4, 2}, job.TaskIDs())
	assert.Empty(t, Job{}.TaskIDs())
}

func TestJobPatch_ApplyTo(t *testing.T) {
	t.Parallel()

	job := Job{ID: 1, JobTitle: "AAAAAAAAAA", MinSalary: int64Ptr(1), MaxSalary: int64Ptr(1)}
	JobPatch{ID: 1, MinSalary: int64Ptr(2)}.ApplyTo(&job)

	assert.Equal(t, "AAAAAAAAAA", job.JobTitle)
	assert.Equal(t, int64(2), *job.MinSalary)
	assert.Equal(t, int64(1), *job.MaxSalary)
}
