package usecase

import (
	"context"

	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
)

var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationUC struct {
	notifications repository.NotificationRepository
}

func NewNotificationUseCase(notifications repository.NotificationRepository) *notificationUC {
	return &notificationUC{notifications: notifications}
}

func (u *notificationUC) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	return u.notifications.ListByUser(ctx, repository.NoTx, userID, unreadOnly, limit)
}

func (u *notificationUC) MarkRead(ctx context.Context, id, userID string) error {
	return u.notifications.MarkRead(ctx, repository.NoTx, id, userID)
}
