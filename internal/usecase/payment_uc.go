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
	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/domain/ports/repository"
	"heartlink/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// AccessStatus is the entitlement snapshot returned to clients.
type AccessStatus struct {
	HasAccess        bool
	PaymentDate      *time.Time
	AccessExpiryDate *time.Time
}

type PaymentUseCase interface {
	// InitializeChatAccess registers a charge intent at the gateway and
	// persists a pending transaction keyed by the returned reference. The
	// second return value is the hosted-payment URL.
	InitializeChatAccess(ctx context.Context, userID string, amount int64, planType model.PlanType) (*model.PaymentTransaction, string, error)

	// VerifyByReference asks the gateway for the authoritative charge status
	// and, on success, applies the pending→success transition exactly once.
	// Returns whether the charge is paid.
	VerifyByReference(ctx context.Context, reference string) (bool, error)

	// ChatAccess reads the user's current entitlement, enforcing expiry.
	ChatAccess(ctx context.Context, userID string) (AccessStatus, error)
}

type paymentUC struct {
	transactions repository.PaymentTransactionRepository
	users        repository.UserRepository
	gateway      adapter.PaymentGateway
	tm           repository.TransactionManager
	currency     string
	log          *zerolog.Logger
}

func NewPaymentUseCase(
	transactions repository.PaymentTransactionRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	currency string,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		transactions: transactions,
		users:        users,
		gateway:      gateway,
		tm:           tm,
		currency:     currency,
		log:          &l,
	}
}

func (u *paymentUC) InitializeChatAccess(ctx context.Context, userID string, amount int64, planType model.PlanType) (*model.PaymentTransaction, string, error) {
	if amount <= 0 {
		return nil, "", domain.ErrInvalidArgument
	}
	if !planType.Valid() {
		return nil, "", domain.ErrInvalidPlanType
	}

	user, err := u.users.FindByID(ctx, repository.NoTx, userID)
	if err != nil {
		return nil, "", err
	}

	reference, payURL, err := u.gateway.InitializeTransaction(ctx, user.Email, amount, map[string]any{
		"service_type": string(model.ServiceTypeChatAccess),
		"plan_type":    string(planType),
		"user_id":      userID,
	})
	if err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("gateway initialize failed")
		return nil, "", domain.ErrGatewayUnavailable
	}

	now := time.Now()
	txn := &model.PaymentTransaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Reference:     reference,
		Amount:        amount,
		Status:        model.TransactionStatusPending,
		PaymentMethod: u.gateway.Name(),
		Metadata: model.ChargeMetadata{
			ServiceType: model.ServiceTypeChatAccess,
			PlanType:    planType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The transaction row is persisted before the user's reference so a crash
	// between the two writes never leaves a reference pointing at nothing.
	if err := u.transactions.Insert(ctx, repository.NoTx, txn); err != nil {
		return nil, "", err
	}
	if err := u.users.SetPaymentReference(ctx, repository.NoTx, userID, reference); err != nil {
		return nil, "", err
	}

	metrics.IncPayment(string(model.TransactionStatusPending))
	u.log.Info().Str("user_id", userID).Str("reference", reference).Int64("amount", amount).Msg("chat access payment initialized")
	return txn, payURL, nil
}

func (u *paymentUC) VerifyByReference(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, domain.ErrInvalidArgument
	}

	// The gateway call happens before any lock is taken; the transaction below
	// stays a handful of statements.
	status, err := u.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		u.log.Warn().Err(err).Str("reference", reference).Msg("gateway verify failed")
		return false, domain.ErrGatewayUnavailable
	}
	if !status.Succeeded() {
		return false, nil
	}

	applied, err := u.applySuccess(ctx, reference, &status.GatewayTxnID, status.PaidAt)
	if err != nil {
		return false, err
	}
	if !applied {
		// A concurrent webhook won the transition; the charge is still paid.
		u.log.Info().Str("reference", reference).Msg("verify found transaction already succeeded")
	}
	return true, nil
}

// applySuccess performs the pending→success transition and the entitlement
// grant atomically. Returns false when the transition was already applied.
func (u *paymentUC) applySuccess(ctx context.Context, reference string, gatewayTxnID *string, paidAt time.Time) (bool, error) {
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var (
		applied bool
		amount  int64
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
		txn, err := u.transactions.FindByReference(ctx, qx, reference)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrPaymentNotFound
			}
			return err
		}
		if txn.Status == model.TransactionStatusSuccess {
			return nil // already applied, nothing to do
		}

		won, err := u.transactions.MarkSucceededIfPending(ctx, qx, reference, gatewayTxnID, paidAt)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}

		expiry := accessExpiry(txn.Metadata.PlanType, paidAt)
		if err := u.users.GrantChatAccess(ctx, qx, txn.UserID, paidAt, expiry, reference); err != nil {
			return err
		}
		applied = true
		amount = txn.Amount
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		metrics.IncPayment(string(model.TransactionStatusSuccess))
		metrics.AddPaymentRevenue(u.currency, amount)
	}
	return applied, nil
}

func (u *paymentUC) ChatAccess(ctx context.Context, userID string) (AccessStatus, error) {
	user, err := u.users.FindByID(ctx, repository.NoTx, userID)
	if err != nil {
		return AccessStatus{}, err
	}
	return AccessStatus{
		HasAccess:        user.ChatAccessAt(time.Now()),
		PaymentDate:      user.PaymentDate,
		AccessExpiryDate: user.AccessExpiryDate,
	}, nil
}

// accessExpiry computes the grant window from the plan type recorded at
// initialization. Unknown plan types grant nothing beyond the paid instant.
func accessExpiry(planType model.PlanType, from time.Time) *time.Time {
	d := planType.AccessDuration()
	expiry := from.Add(d)
	return &expiry
}
