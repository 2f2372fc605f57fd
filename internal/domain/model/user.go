package model

import (
	"strings"
	"time"

	"heartlink/internal/domain"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderFemale    Gender = "female"
	GenderMale      Gender = "male"
	GenderNonBinary Gender = "non_binary"
)

// User is a registered member. Entitlement fields (HasChatAccess and friends)
// are mutated only by the payment reconciliation flow.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Birthdate    time.Time
	Gender       Gender
	Bio          string
	RegisteredAt time.Time
	LastActiveAt time.Time

	// Entitlement state derived from payments.
	HasChatAccess    bool
	PaymentDate      *time.Time
	AccessExpiryDate *time.Time // nil means a perpetual grant
	PaymentReference *string
}

func NewUser(id, email, passwordHash, name string, birthdate time.Time, gender Gender, bio string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if passwordHash == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if birthdate.IsZero() || age(birthdate, time.Now()) < 18 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Birthdate:    birthdate,
		Gender:       gender,
		Bio:          bio,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }

// ChatAccessAt reports whether the user's entitlement is valid at t.
// An expiry in the past revokes access even while the flag is still set;
// the flag column is reconciled lazily by the expiry worker.
func (u *User) ChatAccessAt(t time.Time) bool {
	if !u.HasChatAccess {
		return false
	}
	if u.AccessExpiryDate == nil {
		return true
	}
	return u.AccessExpiryDate.After(t)
}

func (u *User) Age(now time.Time) int { return age(u.Birthdate, now) }

func age(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
