package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/mail.v2"
)

// Client sends notification emails over SMTP.
type Client struct {
	smtpHost string
	smtpPort int
	username string
	password string
	timeout  time.Duration
}

// NewClient creates an SMTP email client. The dial timeout bounds every
// send; the source address is supplied per message.
func NewClient(smtpHost string, smtpPort int, username, password string, timeout time.Duration) *Client {
	return &Client{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		timeout:  timeout,
	}
}

// SendEmail delivers body to destination from the given source identity.
func (c *Client) SendEmail(ctx context.Context, source, destination, subject, body string) error {
	if destination == "" {
		return fmt.Errorf("missing destination address")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	message := mail.NewMessage()

	message.SetHeader("From", source)
	message.SetHeader("To", destination)
	message.SetHeader("Subject", subject)

	message.SetBody("text/plain", body)

	dialer := mail.NewDialer(c.smtpHost, c.smtpPort, c.username, c.password)
	dialer.Timeout = c.timeout

	return dialer.DialAndSend(message)
}
