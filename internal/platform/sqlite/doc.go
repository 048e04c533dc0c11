// Package sqlite implements the store interfaces on an embedded SQLite
// database through the pure-Go modernc.org/sqlite driver.
//
// It backs local development and the repository's end-to-end tests. The
// stores mirror the postgres package: same behavior and error mapping,
// with SQLite placeholders and constraint codes.
package sqlite
