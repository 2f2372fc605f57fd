package model

import "time"

type NotificationKind string

const (
	NotificationNewMatch   NotificationKind = "new_match"
	NotificationNewMessage NotificationKind = "new_message"
	NotificationPayment    NotificationKind = "payment"
)

type Notification struct {
	ID        string
	UserID    string
	Kind      NotificationKind
	Body      string
	RefID     string // match id, message id or payment reference the event points at
	ReadAt    *time.Time
	CreatedAt time.Time
}
