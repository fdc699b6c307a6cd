package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPGateway talks to a hosted payment processor (Pesapal-style API:
// token request, order submission, status query by tracking id).
type HTTPGateway struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string
	NotificationID string
	Currency       string

	client *resty.Client
}

func NewHTTPGateway(baseURL, consumerKey, consumerSecret, callbackURL, notificationID, currency string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    callbackURL,
		NotificationID: notificationID,
		Currency:       currency,
		client:         resty.New().SetTimeout(30 * time.Second),
	}
}

func (g *HTTPGateway) accessToken(ctx context.Context) (string, error) {
	if g.ConsumerKey == "" || g.ConsumerSecret == "" {
		return "", fmt.Errorf("payment consumer credentials are not set")
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(map[string]string{
			"consumer_key":    g.ConsumerKey,
			"consumer_secret": g.ConsumerSecret,
		}).
		Post(g.BaseURL + "/api/Auth/RequestToken")

	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var response map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	token, ok := response["token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in response: %v", response)
	}
	return token, nil
}

func (g *HTTPGateway) Authorize(ctx context.Context, charge Charge) (Result, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return Result{}, err
	}

	body := map[string]any{
		"id":              charge.OrderNumber,
		"currency":        g.Currency,
		"amount":          charge.Amount,
		"description":     fmt.Sprintf("Payment for order %s", charge.OrderNumber),
		"callback_url":    g.CallbackURL,
		"notification_id": g.NotificationID,
		"billing_address": map[string]any{
			"email_address": charge.Email,
			"phone_number":  charge.Phone,
		},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
		}).
		SetBody(body).
		Post(g.BaseURL + "/api/Transactions/SubmitOrderRequest")

	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode() != 200 {
		return Result{}, fmt.Errorf("order submission failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var submitResp map[string]any
	if err := json.Unmarshal(resp.Body(), &submitResp); err != nil {
		return Result{}, fmt.Errorf("invalid response from payment gateway: %w", err)
	}

	redirectURL, rOK := submitResp["redirect_url"].(string)
	trackingID, tOK := submitResp["order_tracking_id"].(string)
	if !rOK || !tOK || redirectURL == "" || trackingID == "" {
		return Result{}, fmt.Errorf("incomplete response from payment gateway")
	}

	// A hosted processor approves asynchronously; the caller holds the order
	// pending until the IPN callback resolves the tracking reference.
	return Result{
		Approved:    true,
		Reference:   trackingID,
		RedirectURL: redirectURL,
	}, nil
}

// TransactionStatus queries the processor for the payment state of a
// previously submitted charge.
func (g *HTTPGateway) TransactionStatus(ctx context.Context, trackingID string) (string, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return "", err
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Accept", "application/json").
		Get(g.BaseURL + "/api/Transactions/GetTransactionStatus?orderTrackingId=" + trackingID)

	if err != nil {
		return "", err
	}

	var statusResp map[string]any
	if err := json.Unmarshal(resp.Body(), &statusResp); err != nil {
		return "", fmt.Errorf("invalid status response: %w", err)
	}

	if errObj, exists := statusResp["error"]; exists && errObj != nil {
		return "", fmt.Errorf("gateway reported an error for tracking id %s", trackingID)
	}

	return fmt.Sprint(statusResp["payment_status_description"]), nil
}
