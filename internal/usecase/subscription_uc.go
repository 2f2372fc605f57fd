package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error)
	// Subscribe starts recurring billing for the user on a plan. One active
	// subscription per user; the gateway call happens before any row is
	// written so a failure leaves nothing behind.
	Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error)
	// Cancel disables recurring billing at the gateway, then marks the row.
	Cancel(ctx context.Context, userID string) error
}

type subscriptionUC struct {
	users   repository.UserRepository
	plans   repository.SubscriptionPlanRepository
	subs    repository.SubscriptionRepository
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewSubscriptionUseCase(
	users repository.UserRepository,
	plans repository.SubscriptionPlanRepository,
	subs repository.SubscriptionRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{users: users, plans: plans, subs: subs, gateway: gateway, log: &l}
}

func (u *subscriptionUC) ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return u.plans.ListAll(ctx, repository.NoTx)
}

func (u *subscriptionUC) Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	user, err := u.users.FindByID(ctx, repository.NoTx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTx, planID)
	if err != nil {
		return nil, err
	}
	if existing, err := u.subs.FindActiveByUser(ctx, repository.NoTx, userID); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	}

	code, emailToken, err := u.gateway.CreateSubscription(ctx, user.Email, plan.PlanCode)
	if err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("gateway create subscription failed")
		return nil, domain.ErrGatewayUnavailable
	}

	now := time.Now()
	periodEnd := now.AddDate(0, 1, 0)
	if plan.Interval == "daily" {
		periodEnd = now.Add(24 * time.Hour)
	}
	s := &model.Subscription{
		ID:               uuid.NewString(),
		UserID:           userID,
		PlanID:           planID,
		SubscriptionCode: code,
		EmailToken:       emailToken,
		Status:           model.SubscriptionStatusActive,
		PeriodStart:      now,
		PeriodEnd:        periodEnd,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.subs.Save(ctx, repository.NoTx, s); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", userID).Str("code", code).Msg("subscription created")
	return s, nil
}

func (u *subscriptionUC) Cancel(ctx context.Context, userID string) error {
	s, err := u.subs.FindActiveByUser(ctx, repository.NoTx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := u.gateway.DisableSubscription(ctx, s.SubscriptionCode, s.EmailToken); err != nil {
		u.log.Warn().Err(err).Str("code", s.SubscriptionCode).Msg("gateway disable subscription failed")
		return domain.ErrGatewayUnavailable
	}

	if _, err := u.subs.UpdateStatusIfChanged(ctx, repository.NoTx, s.SubscriptionCode, model.SubscriptionStatusCancelled, nil); err != nil {
		return err
	}
	return nil
}
