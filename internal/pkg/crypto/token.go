// Package crypto provides cryptographic utilities for Kurosawa Movies.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyBytes is the number of random bytes in a token key.
// Hex encoding yields an opaque 40-character string.
const TokenKeyBytes = 20

// GenerateTokenKey generates a random opaque bearer-token key.
func GenerateTokenKey() (string, error) {
	buf := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
