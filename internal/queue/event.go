// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the account lifecycle queue.
const (
    UserRegistered = "user.registered"
    UserDeleted    = "user.deleted"
)

// UserEvent is published when an account is created or deleted. It carries
// enough information for downstream consumers to log, notify or trigger
// analytics without querying the primary database. Email is empty on
// deletion events.
type UserEvent struct {
    Type       string `json:"type"`
    UserID     uint64 `json:"user_id"`
    Email      string `json:"email,omitempty"`
    OccurredAt string `json:"occurred_at"`
}
