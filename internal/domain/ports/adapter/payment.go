package adapter

import (
	"context"
	"time"
)

// ChargeStatus is the provider-agnostic result of a transaction lookup.
type ChargeStatus struct {
	Reference    string
	Status       string // "success", "failed", "abandoned", "pending", ...
	Amount       int64  // minor currency units
	GatewayTxnID string
	Channel      string
	PaidAt       time.Time
}

func (c ChargeStatus) Succeeded() bool { return c.Status == "success" }

// PaymentGateway is the hex port for the hosted-checkout provider.
//
// All methods perform network I/O with a bounded timeout; on timeout no local
// state may have been mutated and the caller receives a retryable error.
type PaymentGateway interface {
	Name() string

	// InitializeTransaction registers a charge intent and returns the provider
	// reference plus the hosted-payment URL the client is redirected to.
	InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (reference string, authorizationURL string, err error)

	// VerifyTransaction queries the authoritative charge status for a reference.
	VerifyTransaction(ctx context.Context, reference string) (ChargeStatus, error)

	// CreateSubscription starts recurring billing for a customer on a plan and
	// returns the gateway subscription code and the email token needed to
	// cancel it later.
	CreateSubscription(ctx context.Context, customerEmail, planCode string) (subscriptionCode string, emailToken string, err error)

	// DisableSubscription stops recurring billing.
	DisableSubscription(ctx context.Context, subscriptionCode, emailToken string) error
}

// WebhookVerifier authenticates inbound gateway callbacks.
type WebhookVerifier interface {
	// VerifySignature checks the gateway's signature header against the raw
	// request body using the shared secret.
	VerifySignature(body []byte, signature string) bool
}
