package sqlite

import (
	"database/sql"
	"strings"

	"github.com/phrazzld/taskdesk/internal/domain"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		title       sql.NullString
		description sql.NullString
	)
	if err := row.Scan(&task.ID, &title, &description); err != nil {
		return nil, err
	}
	task.Title = title.String
	task.Description = description.String
	return &task, nil
}

func scanJob(row scanner) (*domain.Job, error) {
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
