package adapter

import "context"

// ChatPusher delivers an event to a user's live socket, if any. Delivery is
// best-effort; persistence happens before the push, never instead of it.
type ChatPusher interface {
	Push(userID string, event any)
}

// PresenceChecker reports whether a user currently holds a live socket on any
// instance.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}
