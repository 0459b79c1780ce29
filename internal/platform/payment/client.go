package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pawhaven-donation-engine/internal/config"
)

// HTTPClient implements Processor against a Stripe-compatible HTTP API.
// Requests are form-encoded, responses are JSON, and every call is bounded by
// the configured request timeout.
type HTTPClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewHTTPClient(logger *slog.Logger, cfg *config.PaymentConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// intentResponse is the processor's wire representation of a payment intent
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	LatestCharge string `json:"latest_charge"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var resp intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &resp, "create_intent"); err != nil {
		return nil, err
	}
	return toIntent(&resp), nil
}

func (c *HTTPClient) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	var resp intentResponse
	path := "/v1/payment_intents/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, "retrieve_intent"); err != nil {
		return nil, err
	}
	return toIntent(&resp), nil
}

func (c *HTTPClient) CreateRefund(ctx context.Context, intentID string, amount int64) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)
	form.Set("amount", strconv.FormatInt(amount, 10))

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, &resp, "create_refund"); err != nil {
		return nil, err
	}
	return &Refund{
		ID:     resp.ID,
		Status: resp.Status,
		Amount: resp.Amount,
	}, nil
}

// do performs one processor API call and decodes the response into out
func (c *HTTPClient) do(ctx context.Context, method, path string, form url.Values, out interface{}, op string) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ProcessorError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Payment processor request failed", "op", op, "error", err)
		return &ProcessorError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &ProcessorError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		msg := "unexpected processor response"
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		c.logger.Error("Payment processor returned error",
			"op", op,
			"status", resp.StatusCode,
			"message", msg,
		)
		return &ProcessorError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ProcessorError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func toIntent(r *intentResponse) *Intent {
	status := IntentStatusPending
	switch r.Status {
	case "succeeded":
		status = IntentStatusSucceeded
	case "canceled", "payment_failed":
		status = IntentStatusFailed
	}
	return &Intent{
		ID:           r.ID,
		ClientSecret: r.ClientSecret,
		Status:       status,
		Amount:       r.Amount,
		Currency:     strings.ToUpper(r.Currency),
		ChargeRef:    r.LatestCharge,
	}
}
