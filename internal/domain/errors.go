// Package domain contains the core business entities for Kurosawa Movies.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username or email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserInactive indicates the user account is disabled.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Token Errors
	// ===========================================

	// ErrTokenNotFound indicates no token exists with the given key.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenAlreadyExists indicates the user already holds a token.
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ===========================================
	// Movie Errors
	// ===========================================

	// ErrMovieNotFound indicates the requested movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrMovieAlreadyExists indicates a movie with the same name exists.
	ErrMovieAlreadyExists = errors.New("movie already exists")

	// ErrDirectorNotFound indicates the requested director does not exist.
	ErrDirectorNotFound = errors.New("director not found")

	// ErrGenreNotFound indicates the requested genre does not exist.
	ErrGenreNotFound = errors.New("genre not found")
)
