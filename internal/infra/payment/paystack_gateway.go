package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"heartlink/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.paystack.co"

// PaystackGateway implements adapter.PaymentGateway against the Paystack
// hosted-checkout API using direct HTTP calls.
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

var _ adapter.PaymentGateway = (*PaystackGateway)(nil)

// NewPaystackGateway creates a gateway with a bounded request timeout; on
// timeout nothing local has been mutated and the error is retryable.
func NewPaystackGateway(secretKey, baseURL string, timeout time.Duration) *PaystackGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

// paystackInitializeResponse represents the response from the transaction initialize API.
type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// paystackVerifyResponse represents the response from the transaction verify API.
type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Channel  string `json:"channel"`
		PaidAt   string `json:"paid_at"`
		Currency string `json:"currency"`
	} `json:"data"`
}

type paystackSubscriptionResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		SubscriptionCode string `json:"subscription_code"`
		EmailToken       string `json:"email_token"`
	} `json:"data"`
}

func (g *PaystackGateway) InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (string, string, error) {
	payload := map[string]any{
		"email":  email,
		"amount": amount,
	}
	if metadata != nil {
		payload["metadata"] = metadata
	}

	var out paystackInitializeResponse
	if err := g.post(ctx, "/transaction/initialize", payload, &out); err != nil {
		return "", "", err
	}
	if !out.Status || out.Data.Reference == "" {
		return "", "", fmt.Errorf("paystack initialize rejected: %s", out.Message)
	}
	return out.Data.Reference, out.Data.AuthorizationURL, nil
}

func (g *PaystackGateway) VerifyTransaction(ctx context.Context, reference string) (adapter.ChargeStatus, error) {
	var out paystackVerifyResponse
	if err := g.get(ctx, "/transaction/verify/"+url.PathEscape(reference), &out); err != nil {
		return adapter.ChargeStatus{}, err
	}
	if !out.Status {
		return adapter.ChargeStatus{}, fmt.Errorf("paystack verify rejected: %s", out.Message)
	}

	st := adapter.ChargeStatus{
		Reference:    reference,
		Status:       out.Data.Status,
		Amount:       out.Data.Amount,
		GatewayTxnID: fmt.Sprintf("%d", out.Data.ID),
		Channel:      out.Data.Channel,
	}
	if out.Data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, out.Data.PaidAt); err == nil {
			st.PaidAt = t
		}
	}
	return st, nil
}

func (g *PaystackGateway) CreateSubscription(ctx context.Context, customerEmail, planCode string) (string, string, error) {
	payload := map[string]any{
		"customer": customerEmail,
		"plan":     planCode,
	}
	var out paystackSubscriptionResponse
	if err := g.post(ctx, "/subscription", payload, &out); err != nil {
		return "", "", err
	}
	if !out.Status || out.Data.SubscriptionCode == "" {
		return "", "", fmt.Errorf("paystack create subscription rejected: %s", out.Message)
	}
	return out.Data.SubscriptionCode, out.Data.EmailToken, nil
}

func (g *PaystackGateway) DisableSubscription(ctx context.Context, subscriptionCode, emailToken string) error {
	payload := map[string]any{
		"code":  subscriptionCode,
		"token": emailToken,
	}
	var out paystackSubscriptionResponse
	if err := g.post(ctx, "/subscription/disable", payload, &out); err != nil {
		return err
	}
	if !out.Status {
		return fmt.Errorf("paystack disable subscription rejected: %s", out.Message)
	}
	return nil
}

func (g *PaystackGateway) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *PaystackGateway) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return g.do(req, out)
}

func (g *PaystackGateway) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("paystack unavailable: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w, body: %s", err, string(body))
	}
	return nil
}
