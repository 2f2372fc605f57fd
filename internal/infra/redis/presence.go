package redis

import (
	"context"
	"time"
)

const presenceKey = "presence:online"

// Presence tracks which users hold a live chat socket. The set carries a TTL
// refreshed on every heartbeat so a crashed instance's members age out.
type Presence struct {
	client Client
	ttl    time.Duration
}

func NewPresence(client Client, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Presence{client: client, ttl: ttl}
}

func (p *Presence) Online(ctx context.Context, userID string) error {
	if err := p.client.SAdd(ctx, presenceKey, userID); err != nil {
		return err
	}
	return p.client.Expire(ctx, presenceKey, p.ttl)
}

func (p *Presence) Offline(ctx context.Context, userID string) error {
	return p.client.SRem(ctx, presenceKey, userID)
}

func (p *Presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceKey, userID)
}
