package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAgentRegistered EventType = "agent_registered"
	EventAgentApproved   EventType = "agent_approved"
	EventAgentRejected   EventType = "agent_rejected"
	EventAgentBlocked    EventType = "agent_blocked"
	EventAgentUnblocked  EventType = "agent_unblocked"
	EventAgentDeleted    EventType = "agent_deleted"
)

// Event represents a lifecycle event emitted after a successful
// transition on an agent account.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
