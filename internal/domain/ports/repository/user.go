package repository

import (
	"context"
	"time"

	"heartlink/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, qx Tx, u *model.User) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, qx Tx, email string) (*model.User, error)
	// GrantChatAccess flips the entitlement columns in one statement; expiresAt
	// nil means a perpetual grant.
	GrantChatAccess(ctx context.Context, qx Tx, id string, paymentDate time.Time, expiresAt *time.Time, reference string) error
	SetPaymentReference(ctx context.Context, qx Tx, id, reference string) error
	// RevokeExpiredAccess clears has_chat_access for every user whose expiry
	// has passed, returning the number of rows touched.
	RevokeExpiredAccess(ctx context.Context, qx Tx, now time.Time) (int64, error)
	// ListDiscoverable returns profiles userID has not swiped on yet.
	ListDiscoverable(ctx context.Context, qx Tx, userID string, limit int) ([]*model.User, error)
}
