package push

import (
	"encoding/json"
	"fmt"

	"github.com/nhle/tasksync/internal/model"
)

// EventKind tags an Event.
type EventKind string

const (
	EventCreated EventKind = "task:created"
	EventUpdated EventKind = "task:updated"
	EventDeleted EventKind = "task:deleted"

	// EventAuthRejected is emitted by the Manager itself when the server
	// refuses the handshake credential. It never arrives on the wire.
	EventAuthRejected EventKind = "auth_rejected"
)

// Event is one inbound change from the push channel.
type Event struct {
	Kind EventKind

	// Task is set for created and updated events.
	Task model.Task

	// TaskID is set for deleted events.
	TaskID string

	// Generation identifies the connection the event arrived on. Events
	// from a connection that has since been closed are stale.
	Generation uint64
}

// frame is the wire format: {"event": "task:created", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type deletedPayload struct {
	TaskID string `json:"task_id"`
}

// DecodeError reports a frame that could not be turned into an Event.
// The connection stays usable; the frame is skipped.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "undecodable push frame: " + e.Reason
}

// DecodeEvent parses a wire frame.
func DecodeEvent(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Event{}, &DecodeError{Reason: err.Error()}
	}

	kind := EventKind(f.Event)
	switch kind {
	case EventCreated, EventUpdated:
		var t model.Task
		if err := json.Unmarshal(f.Data, &t); err != nil {
			return Event{}, &DecodeError{Reason: fmt.Sprintf("%s payload: %v", kind, err)}
		}
		if t.ID == "" {
			return Event{}, &DecodeError{Reason: fmt.Sprintf("%s payload has no _id", kind)}
		}
		return Event{Kind: kind, Task: t}, nil

	case EventDeleted:
		var p deletedPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return Event{}, &DecodeError{Reason: fmt.Sprintf("%s payload: %v", kind, err)}
		}
		if p.TaskID == "" {
			return Event{}, &DecodeError{Reason: "task:deleted payload has no task_id"}
		}
		return Event{Kind: kind, TaskID: p.TaskID}, nil

	default:
		return Event{}, &DecodeError{Reason: fmt.Sprintf("unknown event %q", f.Event)}
	}
}
