package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/redact"
)

// Entity alert headers. The alert value is a translation key such as
// "taskdeskApp.task.created" and the params header carries the entity ID.
const (
	AppName           = "taskdeskApp"
	HeaderAlert       = "X-" + AppName + "-alert"
	HeaderAlertParams = "X-" + AppName + "-params"
)

// Alert actions written by the write endpoints.
const (
	AlertCreated = "created"
	AlertUpdated = "updated"
	AlertDeleted = "deleted"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// SetEntityAlert sets the alert headers for a write on the named entity.
func SetEntityAlert(w http.ResponseWriter, entity, action string, id int64) {
	w.Header().Set(HeaderAlert, fmt.Sprintf("%s.%s.%s", AppName, entity, action))
	w.Header().Set(HeaderAlertParams, strconv.FormatInt(id, 10))
}

// RespondCreated answers a successful POST with 201, a Location header and
// the created entity.
func RespondCreated(w http.ResponseWriter, r *http.Request, entity string, id int64, data interface{}) {
	w.Header().Set("Location", fmt.Sprintf("%s/%d", r.URL.Path, id))
	SetEntityAlert(w, entity, AlertCreated, id)
	RespondWithJSON(w, r, http.StatusCreated, data)
}

// RespondUpdated answers a successful PUT or PATCH with 200 and the stored entity.
func RespondUpdated(w http.ResponseWriter, r *http.Request, entity string, id int64, data interface{}) {
	SetEntityAlert(w, entity, AlertUpdated, id)
	RespondWithJSON(w, r, http.StatusOK, data)
}

// RespondDeleted answers a successful DELETE with 204.
func RespondDeleted(w http.ResponseWriter, entity string, id int64) {
	SetEntityAlert(w, entity, AlertDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// RespondWithError writes an ErrorResponse carrying the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger.FromContext(r.Context()).Debug("sending error response",
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, TraceID: GetTraceID(r.Context())})
}

// RespondWithErrorAndLog writes an ErrorResponse with the safe userMessage and
// logs err after redaction. The raw error never reaches the response body.
//
// Server errors log at ERROR, conflicts at WARN and every other client
// error at DEBUG.
func RespondWithErrorAndLog(w http.ResponseWriter, r *http.Request, status int, userMessage string, err error) {
	// The request logger already carries trace_id.
	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), levelForStatus(status), "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: userMessage, TraceID: GetTraceID(r.Context())})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusConflict:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
