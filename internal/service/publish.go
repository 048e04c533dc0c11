package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/events"
)

// publish emits a change event for a committed write. The write already
// succeeded, so failures are logged and not returned.
func publish(
	ctx context.Context,
	log *slog.Logger,
	emitter events.EventEmitter,
	entityType string,
	action events.Action,
	id int64,
	payload interface{},
) {
	event, err := events.NewEntityChangedEvent(entityType, action, id, payload)
	if err != nil {
		log.Error("failed to create change event",
			slog.String("error", err.Error()),
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", id))
		return
	}

	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit change event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", id))
	}
}

// checkUpdateID applies the identifier rules shared by full and partial updates.
func checkUpdateID(pathID, bodyID int64) error {
	if bodyID == 0 {
		return domain.NewValidationError("id", "is missing", domain.ErrIDMissing)
	}
	if bodyID != pathID {
		return domain.NewValidationError("id", "does not match the path", domain.ErrIDMismatch)
	}
	return nil
}
