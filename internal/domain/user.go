// Package domain contains the core business entities for Kurosawa Movies.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the movie catalog system.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// Staff users administer the movie catalog; regular users can browse it.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique username for login and display.
	Username string `json:"username"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// FirstName is the user's given name (optional).
	FirstName string `json:"first_name"`

	// LastName is the user's family name (optional).
	LastName string `json:"last_name"`

	// IsStaff indicates whether the user has administrative privileges.
	// Staff users can create, update, and delete movies and manage other users.
	IsStaff bool `json:"is_staff"`

	// IsActive indicates whether the user account is enabled.
	// Inactive users cannot authenticate.
	IsActive bool `json:"is_active"`

	// IsSubscribed marks subscribed users. Reserved for a future feature;
	// persisted and settable but not consulted anywhere.
	IsSubscribed bool `json:"is_subscribed"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"-"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"-"`
}

// NewUser creates a new User with default values.
// Accounts start out inactive and without privileges; both flags must be
// set explicitly at signup or by an admin afterwards.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}
