// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. Connections go
// through database/sql with the pgx stdlib driver; constraint violations are
// translated into store sentinel errors by MapError.
package postgres
