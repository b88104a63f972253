package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_SendEmail_MissingDestination(t *testing.T) {
	c := NewClient("localhost", 587, "user", "pass", time.Second)

	err := c.SendEmail(context.Background(), "noreply@example.com", "", "New Notification", "hi")
	assert.Error(t, err)
}

func TestClient_SendEmail_CancelledContext(t *testing.T) {
	c := NewClient("localhost", 587, "user", "pass", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.SendEmail(ctx, "noreply@example.com", "a@b.com", "New Notification", "hi")
	assert.ErrorIs(t, err, context.Canceled)
}
