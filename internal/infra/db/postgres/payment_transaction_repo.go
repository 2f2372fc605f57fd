package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

var _ repository.PaymentTransactionRepository = (*paymentTransactionRepo)(nil)

type paymentTransactionRepo struct{ pool *pgxpool.Pool }

func NewPaymentTransactionRepo(pool *pgxpool.Pool) *paymentTransactionRepo {
	return &paymentTransactionRepo{pool: pool}
}

const paymentTxnColumns = `id, user_id, order_id, reference, gateway_txn_id, amount, status, payment_method, service_type, plan_type, meta_order_id, meta_receipt, meta_channel, created_at, updated_at`

func (r *paymentTransactionRepo) Insert(ctx context.Context, qx repository.Tx, t *model.PaymentTransaction) error {
	const q = `
INSERT INTO payment_transactions (
  id, user_id, order_id, reference, gateway_txn_id, amount, status, payment_method,
  service_type, plan_type, meta_order_id, meta_receipt, meta_channel, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`

	_, err := execSQL(ctx, r.pool, qx, q,
		t.ID, t.UserID, t.OrderID, t.Reference, t.GatewayTxnID, t.Amount, t.Status, t.PaymentMethod,
		t.Metadata.ServiceType, t.Metadata.PlanType, nullIfEmpty(t.Metadata.OrderID), nullIfEmpty(t.Metadata.Receipt), nullIfEmpty(t.Metadata.Channel),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// FindByReference locks the row when running inside a transaction so that a
// webhook delivery and a client-initiated verify for the same reference
// serialize instead of both observing 'pending'.
func (r *paymentTransactionRepo) FindByReference(ctx context.Context, qx repository.Tx, reference string) (*model.PaymentTransaction, error) {
	q := `SELECT ` + paymentTxnColumns + ` FROM payment_transactions WHERE reference=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, qx, q, reference)
	if err != nil {
		return nil, err
	}
	return scanPaymentTxn(row)
}

// MarkSucceededIfPending performs the conditional pending→success transition.
// Returns false when another caller already applied it (idempotent replay).
func (r *paymentTransactionRepo) MarkSucceededIfPending(ctx context.Context, qx repository.Tx, reference string, gatewayTxnID *string, paidAt time.Time) (bool, error) {
	const q = `
UPDATE payment_transactions
   SET status = 'success',
       gateway_txn_id = COALESCE($2, gateway_txn_id),
       updated_at = $3
 WHERE reference = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, qx, q, reference, gatewayTxnID, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentTransactionRepo) MarkFailed(ctx context.Context, qx repository.Tx, reference string) error {
	const q = `UPDATE payment_transactions SET status='failed', updated_at=NOW() WHERE reference=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, qx, q, reference)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentTransactionRepo) SumSucceededSince(ctx context.Context, qx repository.Tx, since time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payment_transactions WHERE status='success' AND updated_at >= $1;`
	row, err := pickRow(ctx, r.pool, qx, q, since)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanPaymentTxn(row pgx.Row) (*model.PaymentTransaction, error) {
	t := &model.PaymentTransaction{}
	var metaOrderID, metaReceipt, metaChannel *string
	err := row.Scan(
		&t.ID, &t.UserID, &t.OrderID, &t.Reference, &t.GatewayTxnID, &t.Amount, &t.Status, &t.PaymentMethod,
		&t.Metadata.ServiceType, &t.Metadata.PlanType, &metaOrderID, &metaReceipt, &metaChannel,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	t.Metadata.OrderID = deref(metaOrderID)
	t.Metadata.Receipt = deref(metaReceipt)
	t.Metadata.Channel = deref(metaChannel)
	return t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
