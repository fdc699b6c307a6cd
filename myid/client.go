// Package myid integrates the QR / deep-link login provider. The provider's
// response shapes are loosely keyed, so every payload passes through a single
// normalization step that yields one canonical AuthOrder DTO.
package myid

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusExpired   = "expired"
)

// AuthOrder is the canonical view of a provider auth order, whatever key
// spelling the provider used on the wire.
type AuthOrder struct {
	OrderID     string `json:"orderId"`
	QRCodeToken string `json:"qrCodeToken"`
	DeepLink    string `json:"deepLink"`
	Status      string `json:"status"`
	Subject     string `json:"subject"`
}

type Client struct {
	BaseURL string
	APIKey  string

	// Polling policy: multiplicative backoff from Initial, capped at Ceiling,
	// giving up after MaxAttempts.
	InitialInterval time.Duration
	CeilingInterval time.Duration
	MaxAttempts     int

	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		InitialInterval: 2 * time.Second,
		CeilingInterval: 16 * time.Second,
		MaxAttempts:     20,
		http:            resty.New().SetTimeout(15 * time.Second),
	}
}

// Initiate creates a new authentication order and returns its canonical form.
func (c *Client) Initiate(ctx context.Context) (AuthOrder, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", c.APIKey).
		Post(c.BaseURL + "/api/v1/auth/orders")

	if err != nil {
		return AuthOrder{}, err
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return AuthOrder{}, fmt.Errorf("auth order creation failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return parse(resp.Body())
}

// Status fetches the current state of an auth order.
func (c *Client) Status(ctx context.Context, orderID string) (AuthOrder, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", c.APIKey).
		Get(c.BaseURL + "/api/v1/auth/orders/" + orderID)

	if err != nil {
		return AuthOrder{}, err
	}
	if resp.StatusCode() != 200 {
		return AuthOrder{}, fmt.Errorf("auth order status failed with status %d", resp.StatusCode())
	}

	return parse(resp.Body())
}

// Await polls an auth order until it leaves the pending state, backing off
// multiplicatively up to the ceiling. It returns the terminal order, or an
// error when the attempt budget runs out first.
func (c *Client) Await(ctx context.Context, orderID string) (AuthOrder, error) {
	interval := c.InitialInterval
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		order, err := c.Status(ctx, orderID)
		if err != nil {
			return AuthOrder{}, err
		}
		if order.Status != StatusPending {
			return order, nil
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return AuthOrder{}, ctx.Err()
		}

		interval *= 2
		if interval > c.CeilingInterval {
			interval = c.CeilingInterval
		}
	}
	return AuthOrder{}, fmt.Errorf("auth order %s still pending after %d attempts", orderID, c.MaxAttempts)
}

func parse(body []byte) (AuthOrder, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return AuthOrder{}, fmt.Errorf("invalid auth provider response: %w", err)
	}
	order := Normalize(raw)
	if order.OrderID == "" {
		return AuthOrder{}, fmt.Errorf("auth provider response lacks an order id: %v", raw)
	}
	return order, nil
}

// Normalize maps the provider's unstable key spellings onto the canonical
// DTO. All aliasing lives here; callers never probe raw payloads.
func Normalize(raw map[string]any) AuthOrder {
	return AuthOrder{
		OrderID:     firstString(raw, "orderID", "orderId", "order_id"),
		QRCodeToken: firstString(raw, "qrCodeToken", "qr_token", "qrToken", "qr_code_token"),
		DeepLink:    firstString(raw, "deepLink", "deep_link", "url"),
		Status:      canonicalStatus(firstString(raw, "status", "state", "orderStatus")),
		Subject:     firstString(raw, "subject", "userId", "user_id", "pinfl"),
	}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func canonicalStatus(s string) string {
	switch s {
	case "confirmed", "approved", "success", "completed":
		return StatusConfirmed
	case "rejected", "declined", "denied":
		return StatusRejected
	case "expired", "timeout":
		return StatusExpired
	case "":
		return StatusPending
	default:
		return StatusPending
	}
}
