package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"heartlink/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; origin checks belong at the edge.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AccessChecker reports whether the user currently holds chat access.
// Satisfied by the payment use case.
type AccessChecker interface {
	ChatAccess(ctx context.Context, userID string) (usecase.AccessStatus, error)
}

// Client is one user's socket. All writes go through send; readPump is the
// only reader of the connection.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan any
	hub    *Hub
	chatUC usecase.ChatUseCase
	access AccessChecker
	log    *zerolog.Logger
}

type incomingMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Handler upgrades an authenticated request to a websocket. userIDFn extracts
// the authenticated user id from the request; an empty id rejects the
// handshake.
func Handler(hub *Hub, chatUC usecase.ChatUseCase, access AccessChecker, userIDFn func(*http.Request) string, logger *zerolog.Logger) http.Handler {
	l := logger.With().Str("component", "WSClient").Logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFn(r)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &Client{
			userID: userID,
			conn:   conn,
			send:   make(chan any, sendBuffer),
			hub:    hub,
			chatUC: chatUC,
			access: access,
			log:    &l,
		}
		hub.register <- c

		go c.writePump()
		go c.readPump()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Str("user_id", c.userID).Msg("websocket closed")
			}
			return
		}

		var msg incomingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug().Err(err).Str("user_id", c.userID).Msg("unparseable ws frame")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg incomingMessage) {
	switch msg.Action {
	case "send_message":
		var payload struct {
			MatchID string `json:"match_id"`
			Body    string `json:"body"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError("invalid send_message payload")
			return
		}
		// The gate runs per message: a socket outlives any one grant window,
		// so the handshake is too early to decide. Participant checks happen
		// in the use case.
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		st, err := c.access.ChatAccess(ctx, c.userID)
		if err != nil {
			c.sendError("access check failed")
			return
		}
		if !st.HasAccess {
			c.enqueue(map[string]any{"type": "error", "error": "payment required to access chat", "code": "PAYMENT_REQUIRED"})
			return
		}
		m, err := c.chatUC.SendMessage(ctx, payload.MatchID, c.userID, payload.Body)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.enqueue(map[string]any{"type": "message_sent", "message": m})

	default:
		c.sendError("unknown action: " + msg.Action)
	}
}

func (c *Client) sendError(msg string) {
	c.enqueue(map[string]any{"type": "error", "error": msg})
}

func (c *Client) enqueue(event any) {
	select {
	case c.send <- event:
	default:
	}
}
