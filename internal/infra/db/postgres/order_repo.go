package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

// Insert relies on the primary key to reject duplicates; the unique violation
// surfaces as ErrAlreadyExists so the use case can re-fetch the existing row.
// Check-then-insert without the constraint would race concurrent callers.
func (r *orderRepo) Insert(ctx context.Context, qx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (id, user_id, amount, status, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	_, err := execSQL(ctx, r.pool, qx, q, o.ID, o.UserID, o.Amount, o.Status, o.Metadata, o.CreatedAt)
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

func (r *orderRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Order, error) {
	const q = `SELECT id, user_id, amount, status, metadata, created_at FROM orders WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	o := &model.Order{}
	if err := row.Scan(&o.ID, &o.UserID, &o.Amount, &o.Status, &o.Metadata, &o.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, amount, status, metadata, created_at FROM orders WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, qx, q, userID, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o := new(model.Order)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Amount, &o.Status, &o.Metadata, &o.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	return out, nil
}
