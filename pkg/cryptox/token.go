package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// CSRFTokenSize is the entropy of a CSRF token in bytes before encoding.
// 32 bytes hex-encode to a 64 character string.
const CSRFTokenSize = 32

// NewCSRFToken creates a cryptographically secure random CSRF token,
// hex-encoded. A fresh token is minted on every login and every refresh and is
// bound into the access token issued alongside it.
func NewCSRFToken() (string, error) {
	buf := make([]byte, CSRFTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
