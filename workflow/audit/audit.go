// Package audit records a lightweight event trail for instance mutations,
// grounded on the teacher's Event/EventType shape but scoped down to the
// operations this engine actually performs (no token-routing events).
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the kinds of instance mutation worth recording.
type EventType string

const (
	EventInstanceStarted        EventType = "instance.started"
	EventInstanceCompleted      EventType = "instance.task_completed"
	EventInstanceNavigated      EventType = "instance.navigated"
	EventInstanceVariablesSet   EventType = "instance.variables_set"
	EventInstanceFinished       EventType = "instance.finished"
	EventInstanceRestored       EventType = "instance.restored"
)

// Event is one audit record.
type Event struct {
	EventID    uuid.UUID
	Type       EventType
	EntityID   string
	TaskID     int32
	OccurredAt time.Time
}

// New builds an Event with a fresh EventID.
func New(t EventType, entityID string, taskID int32, occurredAt time.Time) Event {
	return Event{
		EventID:    uuid.New(),
		Type:       t,
		EntityID:   entityID,
		TaskID:     taskID,
		OccurredAt: occurredAt,
	}
}

// Sink receives audit events; implementations may log them, persist them,
// or publish them onto a stream. A nil Sink is valid — callers should skip
// recording rather than crash.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Record(e Event) { f(e) }
