package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/domain/ports/repository"
)

// Compile-time check
var _ MatchUseCase = (*matchUC)(nil)

// SwipeResult reports whether the swipe completed a mutual like.
type SwipeResult struct {
	Matched bool
	Match   *model.Match
}

type MatchUseCase interface {
	// Discover returns profiles the user has not swiped on yet.
	Discover(ctx context.Context, userID string, limit int) ([]*model.User, error)
	// Swipe records the verdict; a mutual like creates the match exactly once
	// and notifies both sides.
	Swipe(ctx context.Context, swiperID, targetID string, direction model.SwipeDirection) (SwipeResult, error)
	ListMatches(ctx context.Context, userID string) ([]*model.Match, error)
	FindMatch(ctx context.Context, matchID string) (*model.Match, error)
}

type matchUC struct {
	users         repository.UserRepository
	swipes        repository.SwipeRepository
	matches       repository.MatchRepository
	notifications repository.NotificationRepository
	pusher        adapter.ChatPusher
	log           *zerolog.Logger
}

func NewMatchUseCase(
	users repository.UserRepository,
	swipes repository.SwipeRepository,
	matches repository.MatchRepository,
	notifications repository.NotificationRepository,
	pusher adapter.ChatPusher,
	logger *zerolog.Logger,
) *matchUC {
	l := logger.With().Str("component", "MatchUC").Logger()
	return &matchUC{
		users:         users,
		swipes:        swipes,
		matches:       matches,
		notifications: notifications,
		pusher:        pusher,
		log:           &l,
	}
}

func (u *matchUC) Discover(ctx context.Context, userID string, limit int) ([]*model.User, error) {
	return u.users.ListDiscoverable(ctx, repository.NoTx, userID, limit)
}

func (u *matchUC) Swipe(ctx context.Context, swiperID, targetID string, direction model.SwipeDirection) (SwipeResult, error) {
	if _, err := u.users.FindByID(ctx, repository.NoTx, targetID); err != nil {
		return SwipeResult{}, err
	}

	s, err := model.NewSwipe(uuid.NewString(), swiperID, targetID, direction)
	if err != nil {
		return SwipeResult{}, err
	}
	if err := u.swipes.Upsert(ctx, repository.NoTx, s); err != nil {
		return SwipeResult{}, err
	}
	if direction != model.SwipeLike {
		return SwipeResult{}, nil
	}

	// Mutual like?
	if _, err := u.swipes.FindReciprocal(ctx, repository.NoTx, swiperID, targetID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SwipeResult{}, nil
		}
		return SwipeResult{}, err
	}

	m, err := model.NewMatch(uuid.NewString(), swiperID, targetID)
	if err != nil {
		return SwipeResult{}, err
	}
	if err := u.matches.Insert(ctx, repository.NoTx, m); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return SwipeResult{}, err
		}
		// Two mutual swipes raced; the other one created the match.
		m, err = u.matches.FindByPair(ctx, repository.NoTx, swiperID, targetID)
		if err != nil {
			return SwipeResult{}, err
		}
		return SwipeResult{Matched: true, Match: m}, nil
	}

	u.notifyMatch(ctx, m, swiperID)
	u.notifyMatch(ctx, m, targetID)
	u.log.Info().Str("match_id", m.ID).Msg("new match created")
	return SwipeResult{Matched: true, Match: m}, nil
}

func (u *matchUC) notifyMatch(ctx context.Context, m *model.Match, userID string) {
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      model.NotificationNewMatch,
		Body:      "You have a new match!",
		RefID:     m.ID,
		CreatedAt: time.Now(),
	}
	if err := u.notifications.Insert(ctx, repository.NoTx, n); err != nil {
		u.log.Warn().Err(err).Str("match_id", m.ID).Msg("failed to store match notification")
	}
	if u.pusher != nil {
		u.pusher.Push(userID, map[string]any{"type": "new_match", "match_id": m.ID})
	}
}

func (u *matchUC) ListMatches(ctx context.Context, userID string) ([]*model.Match, error) {
	return u.matches.ListByUser(ctx, repository.NoTx, userID)
}

func (u *matchUC) FindMatch(ctx context.Context, matchID string) (*model.Match, error) {
	return u.matches.FindByID(ctx, repository.NoTx, matchID)
}
