package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// Create registers a payment intent under an idempotency key. Re-submitting
	// the same id returns the existing order unchanged, regardless of how many
	// callers race on it.
	Create(ctx context.Context, userID string, amount int64, id string, metadata map[string]interface{}) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error)
}

type orderUC struct {
	orders repository.OrderRepository
	log    *zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, logger *zerolog.Logger) *orderUC {
	l := logger.With().Str("component", "OrderUC").Logger()
	return &orderUC{orders: orders, log: &l}
}

func (u *orderUC) Create(ctx context.Context, userID string, amount int64, id string, metadata map[string]interface{}) (*model.Order, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = newOrderID()
	}

	o, err := model.NewOrder(id, userID, amount, metadata)
	if err != nil {
		return nil, err
	}

	// Insert-or-fetch: the unique constraint arbitrates concurrent callers,
	// a plain existence check beforehand could not.
	err = u.orders.Insert(ctx, repository.NoTx, o)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return nil, err
	}

	existing, err := u.orders.FindByID(ctx, repository.NoTx, id)
	if err != nil {
		return nil, err
	}
	u.log.Debug().Str("order_id", id).Msg("duplicate order id, returning existing row")
	return existing, nil
}

func (u *orderUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	return u.orders.ListByUser(ctx, repository.NoTx, userID, limit)
}

// newOrderID returns a sortable ULID-based idempotency key.
func newOrderID() string {
	return "order_" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
