package events

import (
	"time"

	"vibe-curation-be/internal/constant"
	"vibe-curation-be/pkg/store"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ITEM_ACCEPTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields; the constructors below are the only
// intended way to produce valid curation events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewItemAccepted(sessionID string, item store.Item) Event {
	return BaseEvent{
		Type: constant.EventItemAccepted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"item_id":    item.ID,
			"title":      item.Title,
			"creator":    item.Creator,
			"license":    item.License,
		},
		OccurredAt: time.Now(),
	}
}

func NewItemRejected(sessionID string, item store.Item) Event {
	return BaseEvent{
		Type: constant.EventItemRejected,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"item_id":    item.ID,
			"title":      item.Title,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionReset(sessionID string) Event {
	return BaseEvent{
		Type: constant.EventSessionReset,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionUpdated wraps a client-facing state snapshot; the consumer
// forwards it verbatim to the websocket feed.
func NewSessionUpdated(sessionID string, state interface{}) Event {
	return BaseEvent{
		Type: constant.EventSessionUpdated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"state":      state,
		},
		OccurredAt: time.Now(),
	}
}
