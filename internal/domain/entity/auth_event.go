package entity

import "time"

type AuthEventType string

const (
	EventUserRegistered AuthEventType = "user.registered"
	EventLoginSucceeded AuthEventType = "user.login_succeeded"
	EventLoginFailed    AuthEventType = "user.login_failed"
)

// AuthEvent is published on the auth event queue and stored by the audit
// worker. It never carries a password or hash.
type AuthEvent struct {
	ID         string        `json:"id"`
	Type       AuthEventType `json:"type"`
	UserID     string        `json:"user_id,omitempty"`
	Email      string        `json:"email"`
	OccurredAt time.Time     `json:"occurred_at"`
}
