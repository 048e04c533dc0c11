// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package. Loggers travel through request
// contexts so that handlers, services and stores log with the same trace ID.
package logger
