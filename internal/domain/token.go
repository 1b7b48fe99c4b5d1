// Package domain contains the core business entities for Kurosawa Movies.
package domain

import (
	"time"
)

// AuthToken is an opaque bearer token proving authentication.
// Each user has at most one token: login creates it once and returns the
// same value on every subsequent login, logout destroys it. Possession of
// a valid token is the sole credential for authenticated requests.
type AuthToken struct {
	// Key is the opaque token value presented in the Authorization header.
	Key string `json:"token"`

	// UserID is the ID of the user this token belongs to. Exactly one
	// token may exist per user.
	UserID int64 `json:"-"`

	// CreatedAt is the timestamp when the token was issued.
	CreatedAt time.Time `json:"-"`
}

// NewAuthToken creates a token for the given user.
func NewAuthToken(userID int64, key string) *AuthToken {
	return &AuthToken{
		Key:       key,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
