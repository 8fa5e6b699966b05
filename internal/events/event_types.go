package events

import (
	"time"

	"github.com/partyplanning/console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginStarted   EventType = "session_login_started"
	EventLoginSucceeded EventType = "session_login_succeeded"
	EventLoginFailed    EventType = "session_login_failed"
	EventLoginDiscarded EventType = "session_login_discarded"
	EventRestored       EventType = "session_restored"
	EventRestoreFailed  EventType = "session_restore_failed"
	EventLoggedOut      EventType = "session_logged_out"
)

// Event represents a session transition emitted by the store.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Attempt   uint64      `json:"attempt,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Kind domain.ErrorKind `json:"kind"`
}

// RestoreFailedPayload payload.
type RestoreFailedPayload struct {
	Reason string `json:"reason"`
}

// LoginDiscardedPayload payload.
type LoginDiscardedPayload struct {
	LatestAttempt uint64 `json:"latest_attempt"`
}
