package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entity types carried by EntityChangedEvent.
const (
	EntityTask = "task"
	EntityJob  = "job"
)

// Action describes what happened to the entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// EntityChangedEvent records a successful write of one entity.
type EntityChangedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// EntityType is EntityTask or EntityJob
	EntityType string `json:"entity_type"`

	Action Action `json:"action"`

	// EntityID identifies the changed entity
	EntityID int64 `json:"entity_id"`

	// Payload holds the entity as written, JSON encoded. Empty for deletes.
	Payload json.RawMessage `json:"payload,omitempty"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *EntityChangedEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEntityChangedEvent creates an event for the given entity. A nil
// payload leaves Payload empty.
func NewEntityChangedEvent(
	entityType string,
	action Action,
	entityID int64,
	payload interface{},
) (*EntityChangedEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &EntityChangedEvent{
		ID:         uuid.New(),
		EntityType: entityType,
		Action:     action,
		EntityID:   entityID,
		Payload:    payloadBytes,
		OccurredAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *EntityChangedEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *EntityChangedEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *EntityChangedEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *EntityChangedEvent) error
}
