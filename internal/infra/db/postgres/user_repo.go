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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, email, password_hash, name, birthdate, gender, bio, registered_at, last_active_at,
       has_chat_access, payment_date, access_expiry_date, payment_reference`

func (r *userRepo) Save(ctx context.Context, qx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, email, password_hash, name, birthdate, gender, bio, registered_at, last_active_at,
  has_chat_access, payment_date, access_expiry_date, payment_reference
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  email=$2, password_hash=$3, name=$4, birthdate=$5, gender=$6, bio=$7, last_active_at=$9,
  has_chat_access=$10, payment_date=$11, access_expiry_date=$12, payment_reference=$13;`

	_, err := execSQL(ctx, r.pool, qx, q,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Birthdate, u.Gender, u.Bio, u.RegisteredAt, u.LastActiveAt,
		u.HasChatAccess, u.PaymentDate, u.AccessExpiryDate, u.PaymentReference)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1;`
	row, err := pickRow(ctx, r.pool, qx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) GrantChatAccess(ctx context.Context, qx repository.Tx, id string, paymentDate time.Time, expiresAt *time.Time, reference string) error {
	const q = `
UPDATE users
   SET has_chat_access = TRUE,
       payment_date = $2,
       access_expiry_date = $3,
       payment_reference = $4
 WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, qx, q, id, paymentDate, expiresAt, reference)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetPaymentReference(ctx context.Context, qx repository.Tx, id, reference string) error {
	const q = `UPDATE users SET payment_reference=$2 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, qx, q, id, reference)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) RevokeExpiredAccess(ctx context.Context, qx repository.Tx, now time.Time) (int64, error) {
	const q = `
UPDATE users
   SET has_chat_access = FALSE
 WHERE has_chat_access
   AND access_expiry_date IS NOT NULL
   AND access_expiry_date < $1;`
	cmd, err := execSQL(ctx, r.pool, qx, q, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}

func (r *userRepo) ListDiscoverable(ctx context.Context, qx repository.Tx, userID string, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + userColumns + `
  FROM users u
 WHERE u.id <> $1
   AND NOT EXISTS (SELECT 1 FROM swipes s WHERE s.swiper_id = $1 AND s.target_id = u.id)
 ORDER BY u.last_active_at DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, qx, q, userID, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUserFromRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Birthdate, &u.Gender, &u.Bio, &u.RegisteredAt, &u.LastActiveAt,
		&u.HasChatAccess, &u.PaymentDate, &u.AccessExpiryDate, &u.PaymentReference,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}

func scanUserFromRows(rows pgx.Rows) (*model.User, error) {
	u := &model.User{}
	err := rows.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Birthdate, &u.Gender, &u.Bio, &u.RegisteredAt, &u.LastActiveAt,
		&u.HasChatAccess, &u.PaymentDate, &u.AccessExpiryDate, &u.PaymentReference,
	)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}
