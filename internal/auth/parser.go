// Package auth provides token authentication for Kurosawa Movies.
package auth

import "strings"

// Scheme is the authorization scheme expected in the Authorization header.
const Scheme = "Token"

// ParseTokenHeader extracts the token key from an Authorization header
// value of the form "Token <key>". An empty header yields ErrMissingToken;
// any other malformation yields ErrMalformedToken.
func ParseTokenHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != Scheme || parts[1] == "" {
		return "", ErrMalformedToken
	}
	return parts[1], nil
}
