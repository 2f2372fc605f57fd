package model

import (
	"strings"
	"time"

	"heartlink/internal/domain"
)

const maxMessageLen = 4000

// Message is one chat message inside a match conversation.
type Message struct {
	ID        string
	MatchID   string
	SenderID  string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

func NewMessage(id, matchID, senderID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if id == "" || matchID == "" || senderID == "" || body == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(body) > maxMessageLen {
		return nil, domain.ErrInvalidArgument
	}
	return &Message{
		ID:        id,
		MatchID:   matchID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}
