// Package entitystore holds observable client-side state for one entity
// type: the current entity, the current list page, and the loading,
// updating and success flags a screen renders from.
//
// Every action performs its REST call through a Resource, records the
// outcome in State and notifies subscribers synchronously. Actions also
// return the call's error so Go callers can branch on it; screens normally
// observe State instead.
package entitystore
