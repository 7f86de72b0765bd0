package authflow

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateState generates a random state parameter for CSRF protection.
// The state also keys the per-attempt flow record.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateCodeVerifier generates a random code verifier for PKCE.
// 32 bytes yields 43 characters when base64url encoded, the RFC 7636
// minimum length.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
