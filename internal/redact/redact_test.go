package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskdesk/internal/redact"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no sensitive data",
			input:    "task with ID 4 not found",
			expected: "task with ID 4 not found",
		},
		{
			name:     "postgres url",
			input:    "failed to connect to postgres://app:s3cret@db:5432/taskdesk",
			expected: "failed to connect to [REDACTED_CREDENTIAL]db:5432/taskdesk",
		},
		{
			name:     "key value dsn",
			input:    "dial failed: host=db password=s3cret user=app",
			expected: "dial failed: host=db [REDACTED_CREDENTIAL] user=app",
		},
		{
			name:     "sqlite file dsn",
			input:    "unable to open file:taskdesk.db?_pragma=foreign_keys(1)",
			expected: "unable to open [REDACTED_PATH]?_pragma=foreign_keys(1)",
		},
		{
			name:     "unix path",
			input:    "open /var/lib/taskdesk/data.db: permission denied",
			expected: "open [REDACTED_PATH]: permission denied",
		},
		{
			name:     "host and port",
			input:    "dial tcp db.internal.example.com:5432: connection refused",
			expected: "dial tcp [REDACTED_HOST]: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redact.String(tt.input))
		})
	}
}

func TestString_SQL(t *testing.T) {
	out := redact.String("query failed: SELECT id, title FROM task WHERE id = $1")
	assert.NotContains(t, out, "SELECT")
	assert.Contains(t, out, "[REDACTED_SQL]")
}

func TestError(t *testing.T) {
	assert.Equal(t, "", redact.Error(nil))

	err := fmt.Errorf("store: %w", errors.New("postgres://u:p@h/db unreachable"))
	assert.Equal(t, "store: [REDACTED_CREDENTIAL]h/db unreachable", redact.Error(err))
}
