package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/domain/ports/repository"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// ListMessages pages a match conversation backwards from the cursor.
	// Reading also marks the peer's messages as read.
	ListMessages(ctx context.Context, matchID, userID, before string, limit int) ([]*model.Message, error)
	// SendMessage persists the message, relays it to the peer's socket when
	// online, and falls back to a notification row otherwise.
	SendMessage(ctx context.Context, matchID, senderID, body string) (*model.Message, error)
}

type chatUC struct {
	matches       repository.MatchRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	pusher        adapter.ChatPusher
	presence      adapter.PresenceChecker
	log           *zerolog.Logger
}

func NewChatUseCase(
	matches repository.MatchRepository,
	messages repository.MessageRepository,
	notifications repository.NotificationRepository,
	pusher adapter.ChatPusher,
	presence adapter.PresenceChecker,
	logger *zerolog.Logger,
) *chatUC {
	l := logger.With().Str("component", "ChatUC").Logger()
	return &chatUC{
		matches:       matches,
		messages:      messages,
		notifications: notifications,
		pusher:        pusher,
		presence:      presence,
		log:           &l,
	}
}

func (u *chatUC) ListMessages(ctx context.Context, matchID, userID, before string, limit int) ([]*model.Message, error) {
	m, err := u.matches.FindByID(ctx, repository.NoTx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	msgs, err := u.messages.ListByMatch(ctx, repository.NoTx, matchID, before, limit)
	if err != nil {
		return nil, err
	}
	if err := u.messages.MarkRead(ctx, repository.NoTx, matchID, userID); err != nil {
		u.log.Warn().Err(err).Str("match_id", matchID).Msg("failed to mark messages read")
	}
	return msgs, nil
}

func (u *chatUC) SendMessage(ctx context.Context, matchID, senderID, body string) (*model.Message, error) {
	m, err := u.matches.FindByID(ctx, repository.NoTx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}

	msg, err := model.NewMessage(newMessageID(), matchID, senderID, body)
	if err != nil {
		return nil, err
	}
	if err := u.messages.Insert(ctx, repository.NoTx, msg); err != nil {
		return nil, err
	}

	peer := m.Peer(senderID)
	if u.pusher != nil {
		u.pusher.Push(peer, map[string]any{
			"type":      "new_message",
			"match_id":  matchID,
			"message":   msg.Body,
			"sender_id": senderID,
			"id":        msg.ID,
		})
	}

	online := false
	if u.presence != nil {
		if ok, err := u.presence.IsOnline(ctx, peer); err == nil {
			online = ok
		}
	}
	if !online {
		n := &model.Notification{
			ID:        uuid.NewString(),
			UserID:    peer,
			Kind:      model.NotificationNewMessage,
			Body:      "New message from your match",
			RefID:     matchID,
			CreatedAt: time.Now(),
		}
		if err := u.notifications.Insert(ctx, repository.NoTx, n); err != nil {
			u.log.Warn().Err(err).Str("match_id", matchID).Msg("failed to store message notification")
		}
	}
	return msg, nil
}

// Message ids are ULIDs so lexical order matches send order; the message
// repository's cursor pagination relies on that.
func newMessageID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
