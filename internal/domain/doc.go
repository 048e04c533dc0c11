// Package domain contains the core business entities of the application:
// Task and Job, their patch shapes for partial updates, and the validation
// errors they report. It is independent of any storage or delivery mechanism.
package domain
