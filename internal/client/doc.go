// Package client provides a typed HTTP client for the taskdesk REST API.
//
// A Client holds the base URL and transport; Resource values bind it to one
// entity collection (/api/tasks, /api/jobs) and expose the same verbs the
// backend serves. Non-2xx responses are returned as *APIError carrying the
// status code, the server's safe message and its trace ID.
package client
