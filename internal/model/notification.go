package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the delivery channel of a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
	TypePush  Type = "push"
)

// Valid reports whether t is one of the recognized channel types.
func (t Type) Valid() bool {
	switch t {
	case TypeEmail, TypeSMS, TypePush:
		return true
	}
	return false
}

var (
	ErrMissingType    = errors.New("missing type")
	ErrMissingUserID  = errors.New("missing userId")
	ErrMissingMessage = errors.New("missing message")
)

// NotificationRequest is the message shape carried through the queue from
// the enqueuer to the dispatcher. The destination field used depends on the
// type: email notifications read Email, sms and push read Number.
type NotificationRequest struct {
	Type    Type   `json:"type"`    // delivery channel
	UserID  string `json:"userId"`  // opaque user identifier
	Message string `json:"message"` // notification body
	Email   string `json:"email,omitempty"`
	Number  string `json:"number,omitempty"`
}

// Validate checks the minimal actionable shape: type, userId and message
// must be present and the type must be recognized. Destination presence is
// deliberately not checked here; a missing destination surfaces as a channel
// failure at dispatch time.
func (r NotificationRequest) Validate() error {
	if r.Type == "" {
		return ErrMissingType
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unrecognized type %q", r.Type)
	}
	if r.UserID == "" {
		return ErrMissingUserID
	}
	if r.Message == "" {
		return ErrMissingMessage
	}
	return nil
}

// Destination returns the channel-specific destination for the request.
func (r NotificationRequest) Destination() string {
	if r.Type == TypeEmail {
		return r.Email
	}
	return r.Number
}

// NotificationRecord is the durable audit entry written once per validated
// dispatch attempt, before the channel send. Records are append-only: they
// are never updated or deleted, and redelivery may produce duplicates with
// distinct IDs.
type NotificationRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
