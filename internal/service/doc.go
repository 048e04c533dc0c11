// Package service contains the task and job use cases.
//
// Services sit between the HTTP handlers and the stores. They enforce the
// identifier rules of the REST resources (a new entity has no ID, an update
// names an existing one), run multi-row writes in a transaction, and publish
// an events.EntityChangedEvent after every successful write so the search
// index can mirror it.
//
// Services depend on store interfaces and a store.Transactor, never on a
// concrete database.
package service
