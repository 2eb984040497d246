// Package ws pushes live updates to dashboard clients over WebSocket rooms.
package ws

import "time"

// Event types pushed to clients.
const (
	EventWelcome          = "welcome"
	EventDataUpdate       = "data_update"
	EventAutoRefresh      = "auto_refresh"
	EventCriticalAlert    = "critical_alert"
	EventAnalysisComplete = "ai_analysis_complete"
)

// DefaultRoom is the room clients join unless they ask for another.
const DefaultRoom = "dashboard"

// Event is one message pushed to a room.
type Event struct {
	Type      string    `json:"type"`
	Room      string    `json:"room"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, room string, payload any) Event {
	return Event{
		Type:      eventType,
		Room:      room,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
