package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered notification recipient. At least one of Email or
// Number must be set.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	Number    string    `json:"number,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
