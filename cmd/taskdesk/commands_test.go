package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	return root.Execute()
}

func TestMigrateCommand(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "cli.db") + "?_pragma=foreign_keys(1)"
	t.Setenv("TASKDESK_DATABASE_DRIVER", "sqlite")
	t.Setenv("TASKDESK_DATABASE_URL", dsn)
	t.Setenv("TASKDESK_SERVER_LOG_LEVEL", "error")

	for _, command := range []string{"up", "version", "status", "down", "reset"} {
		t.Run(command, func(t *testing.T) {
			require.NoError(t, runCLI(t, "migrate", command))
		})
	}
}

func TestMigrateCommand_InvalidArgs(t *testing.T) {
	assert.Error(t, runCLI(t, "migrate"))
	assert.Error(t, runCLI(t, "migrate", "sideways"))
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	assert.Error(t, runCLI(t, "serve", "extra"))
}
