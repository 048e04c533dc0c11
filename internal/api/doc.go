// Package api exposes the task and job REST resources over HTTP. It decodes
// and validates request bodies, calls the services, and maps their errors to
// status codes and safe JSON messages.
package api
