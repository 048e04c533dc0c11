// Package store declares the persistence contracts for tasks and jobs,
// the sentinel errors drivers translate into, and transaction helpers.
//
// Drivers live under internal/platform (postgres, sqlite).
package store
