package repository

import (
	"context"
	"time"

	"heartlink/internal/domain/model"
)

// -----------------------------
// Orders
// -----------------------------

type OrderRepository interface {
	// Insert fails with domain.ErrAlreadyExists when the id is taken; callers
	// implementing insert-or-fetch catch that and FindByID instead of
	// check-then-insert.
	Insert(ctx context.Context, qx Tx, o *model.Order) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Order, error)
	ListByUser(ctx context.Context, qx Tx, userID string, limit int) ([]*model.Order, error)
}

// -----------------------------
// Payment transactions
// -----------------------------

type PaymentTransactionRepository interface {
	Insert(ctx context.Context, qx Tx, t *model.PaymentTransaction) error
	// FindByReference takes a row lock when called inside a transaction so
	// concurrent webhook deliveries serialize on the reference.
	FindByReference(ctx context.Context, qx Tx, reference string) (*model.PaymentTransaction, error)
	// MarkSucceededIfPending performs the conditional pending→success UPDATE
	// and reports whether this caller won the transition.
	MarkSucceededIfPending(ctx context.Context, qx Tx, reference string, gatewayTxnID *string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, qx Tx, reference string) error
	SumSucceededSince(ctx context.Context, qx Tx, since time.Time) (int64, error)
}

// -----------------------------
// Subscriptions
// -----------------------------

type SubscriptionPlanRepository interface {
	Save(ctx context.Context, qx Tx, p *model.SubscriptionPlan) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.SubscriptionPlan, error)
	FindByPlanCode(ctx context.Context, qx Tx, code string) (*model.SubscriptionPlan, error)
	ListAll(ctx context.Context, qx Tx) ([]*model.SubscriptionPlan, error)
}

type SubscriptionRepository interface {
	Save(ctx context.Context, qx Tx, s *model.Subscription) error
	FindByCode(ctx context.Context, qx Tx, subscriptionCode string) (*model.Subscription, error)
	FindActiveByUser(ctx context.Context, qx Tx, userID string) (*model.Subscription, error)
	// UpdateStatusIfChanged is a no-op (false) when the stored status already
	// equals status, which makes webhook redelivery safe.
	UpdateStatusIfChanged(ctx context.Context, qx Tx, subscriptionCode string, status model.SubscriptionStatus, periodEnd *time.Time) (bool, error)
}
