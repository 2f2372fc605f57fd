package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
	"heartlink/internal/infra/metrics"
)

// Webhook outcomes. Everything except a processing failure is acknowledged
// with a 2xx upstream, because gateways redeliver on anything else.
type WebhookOutcome string

const (
	WebhookApplied  WebhookOutcome = "applied"  // this delivery performed the transition
	WebhookReplayed WebhookOutcome = "replayed" // transition already applied earlier
	WebhookIgnored  WebhookOutcome = "ignored"  // unknown reference or event type
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// HandleChargeSuccess applies a charge.success event for a reference
	// idempotently: safe to run an arbitrary number of times.
	HandleChargeSuccess(ctx context.Context, reference, gatewayTxnID, channel string, paidAt time.Time) (WebhookOutcome, error)

	// HandleSubscriptionEvent applies a subscription lifecycle event
	// (subscription.create / subscription.disable / invoice.payment_failed)
	// by correlating on the gateway subscription code.
	HandleSubscriptionEvent(ctx context.Context, event, subscriptionCode string, periodEnd *time.Time) (WebhookOutcome, error)
}

type webhookUC struct {
	transactions  repository.PaymentTransactionRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	notifications repository.NotificationRepository
	tm            repository.TransactionManager
	currency      string
	log           *zerolog.Logger
}

func NewWebhookUseCase(
	transactions repository.PaymentTransactionRepository,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	notifications repository.NotificationRepository,
	tm repository.TransactionManager,
	currency string,
	logger *zerolog.Logger,
) *webhookUC {
	l := logger.With().Str("component", "WebhookUC").Logger()
	return &webhookUC{
		transactions:  transactions,
		users:         users,
		subscriptions: subscriptions,
		notifications: notifications,
		tm:            tm,
		currency:      currency,
		log:           &l,
	}
}

func (u *webhookUC) HandleChargeSuccess(ctx context.Context, reference, gatewayTxnID, channel string, paidAt time.Time) (WebhookOutcome, error) {
	if reference == "" {
		return WebhookIgnored, nil
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	var txnID *string
	if gatewayTxnID != "" {
		txnID = &gatewayTxnID
	}

	outcome := WebhookIgnored
	var (
		userID string
		amount int64
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		// Row lock on the reference serializes a racing verify call or a
		// concurrent redelivery of the same event.
		txn, err := u.transactions.FindByReference(ctx, qx, reference)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				u.log.Warn().Str("reference", reference).Msg("charge.success for unknown reference")
				return nil
			}
			return err
		}
		if txn.Status == model.TransactionStatusSuccess {
			u.log.Info().Str("reference", reference).Msg("charge.success replayed, already applied")
			outcome = WebhookReplayed
			return nil
		}

		won, err := u.transactions.MarkSucceededIfPending(ctx, qx, reference, txnID, paidAt)
		if err != nil {
			return err
		}
		if !won {
			outcome = WebhookReplayed
			return nil
		}

		expiry := accessExpiry(txn.Metadata.PlanType, paidAt)
		if err := u.users.GrantChatAccess(ctx, qx, txn.UserID, paidAt, expiry, reference); err != nil {
			return err
		}

		n := &model.Notification{
			ID:        uuid.NewString(),
			UserID:    txn.UserID,
			Kind:      model.NotificationPayment,
			Body:      "Your payment was confirmed. Chat is unlocked.",
			RefID:     reference,
			CreatedAt: time.Now(),
		}
		if err := u.notifications.Insert(ctx, qx, n); err != nil {
			return err
		}

		outcome = WebhookApplied
		userID = txn.UserID
		amount = txn.Amount
		return nil
	})
	if err != nil {
		metrics.IncWebhookEvent("charge.success", "failed")
		return outcome, err
	}

	metrics.IncWebhookEvent("charge.success", string(outcome))
	if outcome == WebhookApplied {
		metrics.IncPayment(string(model.TransactionStatusSuccess))
		metrics.AddPaymentRevenue(u.currency, amount)
		u.log.Info().Str("reference", reference).Str("user_id", userID).Str("channel", channel).Msg("charge.success applied")
	}
	return outcome, nil
}

func (u *webhookUC) HandleSubscriptionEvent(ctx context.Context, event, subscriptionCode string, periodEnd *time.Time) (WebhookOutcome, error) {
	if subscriptionCode == "" {
		return WebhookIgnored, nil
	}

	var status model.SubscriptionStatus
	switch event {
	case "subscription.create":
		status = model.SubscriptionStatusActive
	case "subscription.disable":
		status = model.SubscriptionStatusCancelled
	case "subscription.not_renew":
		status = model.SubscriptionStatusExpired
	case "invoice.payment_failed":
		status = model.SubscriptionStatusPastDue
	default:
		u.log.Debug().Str("event", event).Msg("unhandled webhook event type")
		metrics.IncWebhookEvent(event, string(WebhookIgnored))
		return WebhookIgnored, nil
	}

	outcome := WebhookIgnored
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		if _, err := u.subscriptions.FindByCode(ctx, qx, subscriptionCode); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				u.log.Warn().Str("event", event).Str("code", subscriptionCode).Msg("event for unknown subscription")
				return nil
			}
			return err
		}
		changed, err := u.subscriptions.UpdateStatusIfChanged(ctx, qx, subscriptionCode, status, periodEnd)
		if err != nil {
			return err
		}
		if changed {
			outcome = WebhookApplied
		} else {
			outcome = WebhookReplayed
		}
		return nil
	})
	if err != nil {
		metrics.IncWebhookEvent(event, "failed")
		return outcome, err
	}
	metrics.IncWebhookEvent(event, string(outcome))
	return outcome, nil
}
