package auth

import "errors"

// Authentication errors. Their messages are returned verbatim in the error
// envelope, so existing clients keep seeing the wording they expect.
var (
	// ErrMissingToken indicates no Authorization header was sent.
	ErrMissingToken = errors.New("Please provide token")

	// ErrMalformedToken indicates the Authorization header does not carry a
	// well-formed "Token <key>" value, or the key resolves to no active user.
	ErrMalformedToken = errors.New("Please provide valid token")
)
