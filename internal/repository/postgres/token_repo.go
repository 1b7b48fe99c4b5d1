package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

// tokenRepository implements repository.TokenRepository for PostgreSQL.
type tokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new PostgreSQL token repository.
func NewTokenRepository(db *DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// Create creates a new token. The UNIQUE constraint on user_id turns a
// concurrent login race into domain.ErrTokenAlreadyExists for the loser.
func (r *tokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	query := `INSERT INTO auth_tokens (key, user_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Pool.Exec(ctx, query, token.Key, token.UserID, token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyExists
		}
		// The owner was deleted between credential check and insert.
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByKey retrieves a token by its opaque key.
func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	query := `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`

	token := &domain.AuthToken{}
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token by key: %w", err)
	}

	return token, nil
}

// GetByUserID retrieves the token owned by a user, if any.
func (r *tokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	query := `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`

	token := &domain.AuthToken{}
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token by user ID: %w", err)
	}

	return token, nil
}

// DeleteByKey deletes a token by its key.
func (r *tokenRepository) DeleteByKey(ctx context.Context, key string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM auth_tokens WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}

	return nil
}

// Ensure tokenRepository implements repository.TokenRepository.
var _ repository.TokenRepository = (*tokenRepository)(nil)
