// Package events provides the change events published when tasks and jobs
// are written, and an in-memory emitter that fans them out to handlers.
//
// Services emit an EntityChangedEvent after every successful write without
// knowing who listens. The search index is the main subscriber.
//
// The primary components are:
// - EntityChangedEvent: a create, update or delete of one entity
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
package events
