package session

import "github.com/RichardoC/chatwidget/internal/models"

// EventKind names the state change a session went through.
type EventKind string

const (
	EventHistoryLoaded  EventKind = "history_loaded"
	EventMessageAdded   EventKind = "message_added"
	EventTurnStarted    EventKind = "turn_started"
	EventTurnCompleted  EventKind = "turn_completed"
	EventRatingApplied  EventKind = "rating_applied"
	EventHistoryCleared EventKind = "history_cleared"
)

// Event describes a state change for a rendering layer. Message is the
// message the change is about (zero for loads and clears) and History is a
// copy of the full in-memory history after the change.
type Event struct {
	Kind    EventKind
	Message models.Message
	History []models.Message
}

// Listener receives events after the session lock has been released, so it
// may call back into the session.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }
