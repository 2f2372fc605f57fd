package model

import (
	"time"

	"heartlink/internal/domain"
)

type SwipeDirection string

const (
	SwipeLike SwipeDirection = "like"
	SwipePass SwipeDirection = "pass"
)

// Swipe is one user's verdict on another. A (swiper, target) pair holds a
// single row; re-swiping the same pair just updates the direction.
type Swipe struct {
	ID        string
	SwiperID  string
	TargetID  string
	Direction SwipeDirection
	CreatedAt time.Time
}

func NewSwipe(id, swiperID, targetID string, direction SwipeDirection) (*Swipe, error) {
	if id == "" || swiperID == "" || targetID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if swiperID == targetID {
		return nil, domain.ErrSelfSwipe
	}
	if direction != SwipeLike && direction != SwipePass {
		return nil, domain.ErrInvalidArgument
	}
	return &Swipe{
		ID:        id,
		SwiperID:  swiperID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: time.Now(),
	}, nil
}

// Match is a mutual like. The pair is stored ordered (UserLoID < UserHiID) so
// a unique constraint makes creation race-safe when two mutual swipes land
// concurrently.
type Match struct {
	ID        string
	UserLoID  string
	UserHiID  string
	CreatedAt time.Time
}

func NewMatch(id, a, b string) (*Match, error) {
	if id == "" || a == "" || b == "" || a == b {
		return nil, domain.ErrInvalidArgument
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Match{ID: id, UserLoID: lo, UserHiID: hi, CreatedAt: time.Now()}, nil
}

func (m *Match) HasParticipant(userID string) bool {
	return m != nil && (m.UserLoID == userID || m.UserHiID == userID)
}

// Peer returns the other participant's id.
func (m *Match) Peer(userID string) string {
	switch userID {
	case m.UserLoID:
		return m.UserHiID
	case m.UserHiID:
		return m.UserLoID
	default:
		return ""
	}
}
