// Package security provides login token generation and validation.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

const tokenBytes = 16

// tokenPattern matches a well-formed login token: 32 lowercase hex characters (128 bits).
var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// GenerateLoginToken returns a new opaque login token: 32 hex characters from
// 16 bytes of crypto/rand output.
func GenerateLoginToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidLoginToken reports whether s has the shape of an issued login token.
// Tokens are opaque lookup keys; this check is defense-in-depth on untrusted
// input, not an authenticity check.
func ValidLoginToken(s string) bool {
	return tokenPattern.MatchString(s)
}
