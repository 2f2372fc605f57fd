package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"heartlink/internal/domain"
	"heartlink/internal/domain/model"
	"heartlink/internal/domain/ports/repository"
	"heartlink/internal/infra/security"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Birthdate time.Time
	Gender    model.Gender
	Bio       string
}

type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
}

type authUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewAuthUseCase(users repository.UserRepository, logger *zerolog.Logger) *authUC {
	l := logger.With().Str("component", "AuthUC").Logger()
	return &authUC{users: users, log: &l}
}

func (u *authUC) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := security.ValidatePassword(in.Password); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if existing, err := u.users.FindByEmail(ctx, repository.NoTx, email); err == nil && !existing.IsZero() {
		return nil, domain.ErrEmailTaken
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser("", email, hash, in.Name, in.Birthdate, in.Gender, in.Bio)
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTx, user); err != nil {
		// The unique email index backs this up against racing registrations.
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *authUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := u.users.FindByEmail(ctx, repository.NoTx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	user.Touch()
	if err := u.users.Save(ctx, repository.NoTx, user); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last_active_at")
	}
	return user, nil
}
