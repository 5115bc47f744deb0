package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

const (
	HistoryChanged     = "events:history:changed"
	GenerationProgress = "events:generation:progress"
	OutputChanged      = "events:output:changed"
	AppWarning         = "events:app:warning"
)

// Event is the payload pushed to the front-end.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	TrackingID string            `json:"trackingId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const trackingContextKey contextKey = "veostudio/events/tracking"

// WithTracking returns a derived context annotated with the given tracking id
// so event emitters can automatically scope payloads.
func WithTracking(ctx context.Context, trackingID string) context.Context {
	if strings.TrimSpace(trackingID) == "" {
		return ctx
	}
	return context.WithValue(ctx, trackingContextKey, trackingID)
}

// TrackingFromContext extracts the tracking id associated with ctx.
func TrackingFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(trackingContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateEvent(eventType EventType, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info Event.
func NewInfo(message string) Event {
	return CreateEvent(EventInfo, message)
}

// NewWarn creates a warn Event.
func NewWarn(message string) Event {
	return CreateEvent(EventWarn, message)
}

// NewError creates an error Event.
func NewError(message string) Event {
	return CreateEvent(EventError, message)
}

// NewSuccess creates a success Event.
func NewSuccess(message string) Event {
	return CreateEvent(EventSuccess, message)
}
