package repository

import (
	"context"

	"heartlink/internal/domain/model"
)

type SwipeRepository interface {
	// Upsert stores the swipe; a repeated (swiper, target) pair only updates
	// the direction.
	Upsert(ctx context.Context, qx Tx, s *model.Swipe) error
	// FindReciprocal returns the target's like on the swiper, if any.
	FindReciprocal(ctx context.Context, qx Tx, swiperID, targetID string) (*model.Swipe, error)
}

type MatchRepository interface {
	// Insert tolerates the unique-pair constraint: when two mutual swipes race,
	// the loser gets domain.ErrAlreadyExists and fetches the winner's row.
	Insert(ctx context.Context, qx Tx, m *model.Match) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Match, error)
	FindByPair(ctx context.Context, qx Tx, a, b string) (*model.Match, error)
	ListByUser(ctx context.Context, qx Tx, userID string) ([]*model.Match, error)
}

type MessageRepository interface {
	Insert(ctx context.Context, qx Tx, m *model.Message) error
	ListByMatch(ctx context.Context, qx Tx, matchID string, before string, limit int) ([]*model.Message, error)
	MarkRead(ctx context.Context, qx Tx, matchID, readerID string) error
}

type NotificationRepository interface {
	Insert(ctx context.Context, qx Tx, n *model.Notification) error
	ListByUser(ctx context.Context, qx Tx, userID string, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, qx Tx, id, userID string) error
}
