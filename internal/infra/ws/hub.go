package ws

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/infra/metrics"
	"heartlink/internal/infra/redis"
)

// Hub tracks one live socket per user and relays events to them. It also
// mirrors connections into the redis presence set so other instances can see
// who is online.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	presence   *redis.Presence // nil disables cross-instance presence
	log        *zerolog.Logger
}

var _ adapter.ChatPusher = (*Hub)(nil)

func NewHub(presence *redis.Presence, logger *zerolog.Logger) *Hub {
	l := logger.With().Str("component", "WSHub").Logger()
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presence,
		log:        &l,
	}
}

// Run processes register/unregister events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			// A reconnect replaces the previous socket.
			if old, ok := h.clients[c.userID]; ok {
				close(old.send)
			}
			h.clients[c.userID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.setOnline(ctx, c.userID, true)
			metrics.SetWSClients(total)
			h.log.Debug().Str("user_id", c.userID).Int("total", total).Msg("client registered")

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.userID]; ok && cur == c {
				close(c.send)
				delete(h.clients, c.userID)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.setOnline(ctx, c.userID, false)
			metrics.SetWSClients(total)
			h.log.Debug().Str("user_id", c.userID).Int("total", total).Msg("client unregistered")
		}
	}
}

// Push delivers an event to the user's socket if one is connected on this
// instance. Best-effort: a full send buffer drops the event rather than
// blocking the caller.
func (h *Hub) Push(userID string, event any) {
	// The read lock is held across the send attempt. Run only closes a send
	// channel under the write lock, so the channel cannot close mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case c.send <- event:
	default:
		h.log.Warn().Str("user_id", userID).Msg("send buffer full, dropping event")
	}
}

func (h *Hub) setOnline(ctx context.Context, userID string, online bool) {
	if h.presence == nil {
		return
	}
	var err error
	if online {
		err = h.presence.Online(ctx, userID)
	} else {
		err = h.presence.Offline(ctx, userID)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("presence update failed")
	}
}
