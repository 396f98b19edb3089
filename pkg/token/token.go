// Package token generates opaque session tokens.
package token

import (
	"crypto/rand"
	"fmt"
)

// Length is the size of a session token in characters.
const Length = 32

// alphabet matches the token format understood by existing clients.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New returns a fresh random token of Length characters drawn from the
// token alphabet. The randomness comes from crypto/rand, so tokens are not
// guessable by a concurrent client.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
