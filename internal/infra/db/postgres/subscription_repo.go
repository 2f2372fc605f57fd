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

var (
	_ repository.SubscriptionRepository     = (*subscriptionRepo)(nil)
	_ repository.SubscriptionPlanRepository = (*subscriptionPlanRepo)(nil)
)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_id, subscription_code, email_token, status, period_start, period_end, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, qx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_id, subscription_code, email_token, status, period_start, period_end, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  status=$6, period_start=$7, period_end=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, qx, q,
		s.ID, s.UserID, s.PlanID, s.SubscriptionCode, s.EmailToken, s.Status, s.PeriodStart, s.PeriodEnd, s.CreatedAt, s.UpdatedAt)
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

// FindByCode locks the row inside a transaction; subscription lifecycle
// webhooks serialize on the code the same way charges do on the reference.
func (r *subscriptionRepo) FindByCode(ctx context.Context, qx repository.Tx, subscriptionCode string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE subscription_code=$1`
	if inTx(qx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, qx, q, subscriptionCode)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, qx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id=$1 AND status='active' ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, qx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) UpdateStatusIfChanged(ctx context.Context, qx repository.Tx, subscriptionCode string, status model.SubscriptionStatus, periodEnd *time.Time) (bool, error) {
	const q = `
UPDATE subscriptions
   SET status = $2,
       period_end = COALESCE($3, period_end),
       updated_at = NOW()
 WHERE subscription_code = $1
   AND status <> $2;`
	cmd, err := execSQL(ctx, r.pool, qx, q, subscriptionCode, status, periodEnd)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.SubscriptionCode, &s.EmailToken, &s.Status, &s.PeriodStart, &s.PeriodEnd, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

// -----------------------------
// Plans
// -----------------------------

type subscriptionPlanRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionPlanRepo(pool *pgxpool.Pool) *subscriptionPlanRepo {
	return &subscriptionPlanRepo{pool: pool}
}

const planColumns = `id, plan_code, name, amount, interval, created_at`

func (r *subscriptionPlanRepo) Save(ctx context.Context, qx repository.Tx, p *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (id, plan_code, name, amount, interval, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET plan_code=$2, name=$3, amount=$4, interval=$5;`
	_, err := execSQL(ctx, r.pool, qx, q, p.ID, p.PlanCode, p.Name, p.Amount, p.Interval, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionPlanRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM subscription_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *subscriptionPlanRepo) FindByPlanCode(ctx context.Context, qx repository.Tx, code string) (*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM subscription_plans WHERE plan_code=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, code)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *subscriptionPlanRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY amount ASC;`
	rows, err := queryRows(ctx, r.pool, qx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SubscriptionPlan
	for rows.Next() {
		p := new(model.SubscriptionPlan)
		if err := rows.Scan(&p.ID, &p.PlanCode, &p.Name, &p.Amount, &p.Interval, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func scanPlan(row pgx.Row) (*model.SubscriptionPlan, error) {
	p := &model.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.PlanCode, &p.Name, &p.Amount, &p.Interval, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
