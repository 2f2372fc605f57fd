package model

import (
	"time"

	"heartlink/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

// Order anchors a payment intent under a caller-supplied or generated
// idempotency key. Re-submitting the same id returns the existing row
// unchanged; orders never advance past pending on their own (transactions may
// point at them via OrderID but there is no automatic linkage).
type Order struct {
	ID        string
	UserID    string
	Amount    int64 // minor currency units, must be positive
	Status    OrderStatus
	Metadata  map[string]interface{} // serialized in DB as JSONB
	CreatedAt time.Time
}

func NewOrder(id, userID string, amount int64, metadata map[string]interface{}) (*Order, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Status:    OrderStatusPending,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, nil
}
