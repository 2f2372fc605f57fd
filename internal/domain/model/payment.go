package model

import "time"

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending" // initialized at the gateway; awaiting success
	TransactionStatusSuccess TransactionStatus = "success" // absorbing: replayed events are no-ops
	TransactionStatusFailed  TransactionStatus = "failed"  // gateway reported failure
)

type ServiceType string

const (
	ServiceTypeChatAccess   ServiceType = "chat_access"
	ServiceTypeSubscription ServiceType = "subscription"
)

type PlanType string

const (
	PlanTypeDaily   PlanType = "daily"
	PlanTypeMonthly PlanType = "monthly"
)

// AccessDuration maps a plan type to the grant window applied on success.
// Unknown plan types deliberately yield zero so a malformed charge never
// grants open-ended access.
func (p PlanType) AccessDuration() time.Duration {
	switch p {
	case PlanTypeDaily:
		return 24 * time.Hour
	case PlanTypeMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

func (p PlanType) Valid() bool {
	return p == PlanTypeDaily || p == PlanTypeMonthly
}

// ChargeMetadata is the typed shape carried with a transaction instead of an
// opaque JSON blob. One variant per service type; decoded at the boundary.
type ChargeMetadata struct {
	ServiceType ServiceType `json:"service_type"`
	PlanType    PlanType    `json:"plan_type,omitempty"`
	OrderID     string      `json:"order_id,omitempty"`
	Receipt     string      `json:"receipt,omitempty"` // provider receipt for IAP-style flows
	Channel     string      `json:"channel,omitempty"` // card, bank_transfer, ...
}

// PaymentTransaction is the ledger entry for one payment attempt. Reference is
// the gateway-correlatable idempotency anchor: unique across all transactions,
// and the pending→success transition happens at most once per reference.
type PaymentTransaction struct {
	ID            string
	UserID        string
	OrderID       *string
	Reference     string
	GatewayTxnID  *string // provider-side transaction id, set on verification
	Amount        int64   // minor currency units
	Status        TransactionStatus
	PaymentMethod string
	Metadata      ChargeMetadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t *PaymentTransaction) IsZero() bool { return t == nil || t.ID == "" }
