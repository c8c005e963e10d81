package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"retailtracker/internal/core"
)

// Action is what happened to an entry.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

var ErrMalformedEvent = errors.New("malformed entry event")

// EntryEvent announces a change to one sale or expense. It carries only
// identifiers; consumers load the current row from the store when needed.
type EntryEvent struct {
	Kind      core.EntryKind `json:"kind"`
	Action    Action         `json:"action"`
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewEntryEvent(kind core.EntryKind, action Action, id int64, userID string, at time.Time) EntryEvent {
	return EntryEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: at.UTC(),
	}
}

func (e EntryEvent) Validate() error {
	switch e.Kind {
	case core.KindSale, core.KindExpense:
	default:
		return fmt.Errorf("%w: kind %q", ErrMalformedEvent, e.Kind)
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("%w: action %q", ErrMalformedEvent, e.Action)
	}
	if e.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrMalformedEvent, e.ID)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: missing user_id", ErrMalformedEvent)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON decodes and validates an event body.
func EntryEventFromJSON(data []byte) (EntryEvent, error) {
	var ev EntryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return EntryEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return EntryEvent{}, err
	}
	return ev, nil
}
