// Package push provides a client for delivering push notifications through
// a device-push gateway, plus a no-op sender for deployments without one.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// Client represents a push gateway client used to send notifications.
type Client struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

// NewClient creates a new push Client for the given gateway.
func NewClient(gatewayURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// sendPushRequest represents the payload for the gateway's push endpoint.
type sendPushRequest struct {
	To   string `json:"to"`   // device address
	Body string `json:"body"` // message text
}

// SendPush sends a push notification to the given device address.
func (c *Client) SendPush(ctx context.Context, destination, body string) error {
	if destination == "" {
		return fmt.Errorf("missing destination device")
	}

	reqBody := sendPushRequest{
		To:   destination,
		Body: body,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/push", bytes.NewBuffer(payload))
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
		return fmt.Errorf("push gateway error: %s", resp.Status)
	}

	return nil
}

// Noop is a push sender that accepts every message without delivering it.
// It is wired when no push gateway is configured, so the dispatch path for
// push stays explicit instead of silently missing.
type Noop struct{}

// NewNoop creates a no-op push sender.
func NewNoop() Noop { return Noop{} }

// SendPush logs and drops the message.
func (Noop) SendPush(_ context.Context, destination, _ string) error {
	zlog.Logger.Info().Str("destination", destination).Msg("push gateway not configured, dropping push notification")
	return nil
}
