// Package testdb provides database setup for tests.
//
// Open returns a migrated in-memory SQLite database, so store, service and
// API tests run without external services. OpenPostgres returns a migrated
// PostgreSQL database for tests behind the integration build tag and skips
// the test when no database URL is configured:
//
//	func TestTaskStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    tasks := sqlite.NewTaskStore(db, nil)
//	    // ...
//	}
//
// WithTx runs a test function in a transaction that is always rolled back.
//
// Environment variables:
//
//   - DATABASE_URL: PostgreSQL connection string for integration tests
//   - TASKDESK_TEST_DB_URL: alternative connection string
package testdb
