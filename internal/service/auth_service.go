package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/pkg/crypto"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// AuthService manages token-based authentication.
type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

// Login verifies the credentials and returns the user's token, creating one
// if none exists yet. Each user holds at most one token, so repeated logins
// return the same key.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AuthToken, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !user.CanAuthenticate() {
		s.logger.Debug().Str("username", username).Msg("login rejected for inactive user")
		return nil, nil, domain.ErrInvalidCredentials
	}

	token, err := s.getOrCreateToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return token, user, nil
}

// Logout deletes the token. A token that is already gone is not an error,
// so logging out twice succeeds.
func (s *AuthService) Logout(ctx context.Context, key string) error {
	if err := s.tokens.DeleteByKey(ctx, key); err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			s.logger.Debug().Msg("logout for unknown token")
			return nil
		}
		s.logger.Error().Err(err).Msg("failed to delete token")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// ResolveToken returns the active user owning the token key. It fails with
// ErrInvalidToken when the key is unknown or the account is inactive.
func (s *AuthService) ResolveToken(ctx context.Context, key string) (*domain.User, error) {
	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !user.CanAuthenticate() {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) getOrCreateToken(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	token, err := s.tokens.GetByUserID(ctx, userID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrTokenNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	key, err := crypto.GenerateTokenKey()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate token key")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token = domain.NewAuthToken(userID, key)
	if err := s.tokens.Create(ctx, token); err != nil {
		if errors.Is(err, domain.ErrTokenAlreadyExists) {
			// A concurrent login created the token first; use theirs.
			return s.tokens.GetByUserID(ctx, userID)
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return token, nil
}
