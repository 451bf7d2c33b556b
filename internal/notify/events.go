// Package notify broadcasts state-change events from the reconciliation
// store and the session to in-process subscribers such as the view projector.
package notify

import "time"

// EventType names a state change.
type EventType string

const (
	// EventEventsLoaded fires after the event list is replaced.
	EventEventsLoaded EventType = "events.loaded"
	// EventTasksLoaded fires after the task list is replaced.
	EventTasksLoaded EventType = "tasks.loaded"

	EventEventCreated EventType = "event.created"
	EventEventUpdated EventType = "event.updated"
	EventEventDeleted EventType = "event.deleted"
	// EventEventOpened fires when the current event detail is replaced.
	EventEventOpened EventType = "event.opened"

	EventTaskChanged EventType = "task.changed"
	EventTaskDeleted EventType = "task.deleted"

	EventParticipantAdded   EventType = "participant.added"
	EventParticipantRemoved EventType = "participant.removed"

	// EventSessionChanged fires on login, logout and token changes.
	EventSessionChanged EventType = "session.changed"
)

// Event describes one change. EntityID is empty for bulk changes.
type Event struct {
	At       time.Time `json:"at"`
	Type     EventType `json:"type"`
	EntityID string    `json:"entityId,omitempty"`
	EventID  string    `json:"eventId,omitempty"`
}

// New stamps an event of type t.
func New(t EventType, entityID string) Event {
	return Event{
		At:       time.Now(),
		Type:     t,
		EntityID: entityID,
	}
}

// ForEvent stamps an event about an entity that belongs to eventID.
func ForEvent(t EventType, entityID, eventID string) Event {
	e := New(t, entityID)
	e.EventID = eventID
	return e
}
