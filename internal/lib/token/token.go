// Package token generates the one-time tokens mailed to users for email
// verification and password reset.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a 64-character hex string from 32 bytes of crypto randomness.
func New() (string, error) {
	const op = "token.New"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
