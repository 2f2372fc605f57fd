package model

import (
	"time"

	"heartlink/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
)

// SubscriptionPlan is a purchasable recurring-billing plan mirrored at the
// gateway under PlanCode.
type SubscriptionPlan struct {
	ID        string
	PlanCode  string // gateway-side plan code
	Name      string
	Amount    int64  // minor currency units per interval
	Interval  string // daily | monthly
	CreatedAt time.Time
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

func NewSubscriptionPlan(id, planCode, name string, amount int64, interval string) (*SubscriptionPlan, error) {
	if id == "" || planCode == "" || name == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if interval != "daily" && interval != "monthly" {
		return nil, domain.ErrInvalidArgument
	}
	return &SubscriptionPlan{
		ID:        id,
		PlanCode:  planCode,
		Name:      name,
		Amount:    amount,
		Interval:  interval,
		CreatedAt: time.Now(),
	}, nil
}

// Subscription links a user to a plan through the gateway's recurring-billing
// code. Webhook-driven status updates are idempotent per SubscriptionCode.
type Subscription struct {
	ID               string
	UserID           string
	PlanID           string
	SubscriptionCode string // gateway recurring-billing code, unique
	EmailToken       string // required by the gateway for cancellation
	Status           SubscriptionStatus
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s *Subscription) IsZero() bool { return s == nil || s.ID == "" }
