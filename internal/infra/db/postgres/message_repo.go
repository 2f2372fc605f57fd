package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

var (
	_ repository.MessageRepository      = (*messageRepo)(nil)
	_ repository.NotificationRepository = (*notificationRepo)(nil)
)

type messageRepo struct{ pool *pgxpool.Pool }

func NewMessageRepo(pool *pgxpool.Pool) *messageRepo {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Insert(ctx context.Context, qx repository.Tx, m *model.Message) error {
	const q = `INSERT INTO messages (id, match_id, sender_id, body, read_at, created_at) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, qx, q, m.ID, m.MatchID, m.SenderID, m.Body, m.ReadAt, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// ListByMatch pages backwards in time; before is an exclusive message-id
// cursor (empty for the newest page). Message ids are ULIDs, so ordering by
// id matches ordering by creation time.
func (r *messageRepo) ListByMatch(ctx context.Context, qx repository.Tx, matchID string, before string, limit int) ([]*model.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := `SELECT id, match_id, sender_id, body, read_at, created_at FROM messages WHERE match_id=$1`
	args := []interface{}{matchID}
	if before != "" {
		q += ` AND id < $2`
		args = append(args, before)
	}
	q += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit)

	rows, err := queryRows(ctx, r.pool, qx, q, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Message
	for rows.Next() {
		m := new(model.Message)
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, qx repository.Tx, matchID, readerID string) error {
	const q = `UPDATE messages SET read_at=NOW() WHERE match_id=$1 AND sender_id<>$2 AND read_at IS NULL;`
	_, err := execSQL(ctx, r.pool, qx, q, matchID, readerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// -----------------------------
// Notifications
// -----------------------------

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Insert(ctx context.Context, qx repository.Tx, n *model.Notification) error {
	const q = `INSERT INTO notifications (id, user_id, kind, body, ref_id, read_at, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, qx, q, n.ID, n.UserID, n.Kind, n.Body, n.RefID, n.ReadAt, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := `SELECT id, user_id, kind, body, ref_id, read_at, created_at FROM notifications WHERE user_id=$1`
	if unreadOnly {
		q += ` AND read_at IS NULL`
	}
	q += ` ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, qx, q, userID, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n := new(model.Notification)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Body, &n.RefID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, qx repository.Tx, id, userID string) error {
	const q = `UPDATE notifications SET read_at=NOW() WHERE id=$1 AND user_id=$2 AND read_at IS NULL;`
	cmd, err := execSQL(ctx, r.pool, qx, q, id, userID)
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
