package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

var (
	_ repository.SwipeRepository = (*swipeRepo)(nil)
	_ repository.MatchRepository = (*matchRepo)(nil)
)

type swipeRepo struct{ pool *pgxpool.Pool }

func NewSwipeRepo(pool *pgxpool.Pool) *swipeRepo {
	return &swipeRepo{pool: pool}
}

func (r *swipeRepo) Upsert(ctx context.Context, qx repository.Tx, s *model.Swipe) error {
	const q = `
INSERT INTO swipes (id, swiper_id, target_id, direction, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (swiper_id, target_id) DO UPDATE SET direction=$4;`
	_, err := execSQL(ctx, r.pool, qx, q, s.ID, s.SwiperID, s.TargetID, s.Direction, s.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *swipeRepo) FindReciprocal(ctx context.Context, qx repository.Tx, swiperID, targetID string) (*model.Swipe, error) {
	const q = `SELECT id, swiper_id, target_id, direction, created_at FROM swipes WHERE swiper_id=$1 AND target_id=$2 AND direction='like';`
	row, err := pickRow(ctx, r.pool, qx, q, targetID, swiperID)
	if err != nil {
		return nil, err
	}
	s := &model.Swipe{}
	if err := row.Scan(&s.ID, &s.SwiperID, &s.TargetID, &s.Direction, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

type matchRepo struct{ pool *pgxpool.Pool }

func NewMatchRepo(pool *pgxpool.Pool) *matchRepo {
	return &matchRepo{pool: pool}
}

const matchColumns = `id, user_lo_id, user_hi_id, created_at`

// Insert leans on the unique (user_lo_id, user_hi_id) pair; when two mutual
// swipes race, exactly one insert wins and the other caller re-fetches.
func (r *matchRepo) Insert(ctx context.Context, qx repository.Tx, m *model.Match) error {
	const q = `INSERT INTO matches (id, user_lo_id, user_hi_id, created_at) VALUES ($1,$2,$3,$4);`
	_, err := execSQL(ctx, r.pool, qx, q, m.ID, m.UserLoID, m.UserHiID, m.CreatedAt)
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

func (r *matchRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Match, error) {
	const q = `SELECT ` + matchColumns + ` FROM matches WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMatch(row)
}

func (r *matchRepo) FindByPair(ctx context.Context, qx repository.Tx, a, b string) (*model.Match, error) {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	const q = `SELECT ` + matchColumns + ` FROM matches WHERE user_lo_id=$1 AND user_hi_id=$2;`
	row, err := pickRow(ctx, r.pool, qx, q, lo, hi)
	if err != nil {
		return nil, err
	}
	return scanMatch(row)
}

func (r *matchRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.Match, error) {
	const q = `SELECT ` + matchColumns + ` FROM matches WHERE user_lo_id=$1 OR user_hi_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, qx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Match
	for rows.Next() {
		m := new(model.Match)
		if err := rows.Scan(&m.ID, &m.UserLoID, &m.UserHiID, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	m := &model.Match{}
	if err := row.Scan(&m.ID, &m.UserLoID, &m.UserHiID, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
