// Package sms provides a client for sending notifications through an SMS
// gateway speaking a small JSON API.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client represents an SMS gateway client used to send notifications.
type Client struct {
	gatewayURL string       // base URL of the SMS gateway
	apiKey     string       // bearer token for authentication
	client     *http.Client // HTTP client used to make requests
}

// NewClient creates a new SMS Client for the given gateway.
func NewClient(gatewayURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// sendMessageRequest represents the payload for the gateway's send endpoint.
type sendMessageRequest struct {
	To   string `json:"to"`   // destination phone number
	Body string `json:"body"` // message text
}

// SendSMS sends a notification message to the given phone number.
//
// It returns an error if the destination is empty, the request fails, or
// the gateway responds with a non-2xx status.
func (c *Client) SendSMS(ctx context.Context, destination, body string) error {
	if destination == "" {
		return fmt.Errorf("missing destination number")
	}

	reqBody := sendMessageRequest{
		To:   destination,
		Body: body,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/messages", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sms gateway error: %s", resp.Status)
	}

	return nil
}
