// Package queue moves password reset mail off the request path through a
// Kafka topic. The API publishes events and cmd/mailer consumes them.
package queue

import "time"

const EventPasswordReset = "password_reset"

// PasswordResetEvent asks the mailer to deliver a reset link.
type PasswordResetEvent struct {
	Type        string    `json:"type"`
	Email       string    `json:"email"`
	ResetURL    string    `json:"reset_url"`
	RequestedAt time.Time `json:"requested_at"`
}
