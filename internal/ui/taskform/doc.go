// Package taskform implements the Task create/edit screen.
//
// A Form is one screen session. Init resets the task store for a new
// record or fetches the existing one, and always loads the Job list.
// Submit merges the edited values over the loaded record and dispatches a
// create or update; when the task store reports success the form navigates
// to the list view, at most once per session.
//
// Handler serves the screen as server-rendered HTML. Each request runs a
// fresh session against the REST backend.
package taskform
