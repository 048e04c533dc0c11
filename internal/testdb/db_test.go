package testdb_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/taskdesk/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	db := testdb.Open(t)

	for _, table := range []string{"task", "job", "rel_job__task"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.ExecContext(ctx, "INSERT INTO task (title, description) VALUES ('a', 'b')")
		require.NoError(t, err)
	})

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM task").Scan(&n))
	assert.Zero(t, n)
}

func TestGetTestDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TASKDESK_TEST_DB_URL", "")
	assert.False(t, testdb.IsIntegrationTestEnvironment())

	t.Setenv("TASKDESK_TEST_DB_URL", "postgres://fallback")
	assert.Equal(t, "postgres://fallback", testdb.GetTestDatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://primary")
	assert.Equal(t, "postgres://primary", testdb.GetTestDatabaseURL())
	assert.True(t, testdb.IsIntegrationTestEnvironment())
}
