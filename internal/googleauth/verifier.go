package googleauth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ClaimsVerifier verifies a raw ID token and returns the verified email
// claim. The production implementation validates against Google's signing
// keys; tests substitute a fake.
type ClaimsVerifier interface {
	VerifyEmail(ctx context.Context, rawIDToken string) (string, error)
}

// IDTokenVerifier verifies Google ID tokens for a given OAuth client ID.
type IDTokenVerifier struct {
	clientID string
}

// NewIDTokenVerifier creates a verifier bound to the given client ID.
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

// VerifyEmail validates the token signature, audience and expiry, and
// returns the email claim.
func (v *IDTokenVerifier) VerifyEmail(ctx context.Context, rawIDToken string) (string, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, v.clientID)
	if err != nil {
		return "", fmt.Errorf("validate id token: %w", err)
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("id token has no email claim")
	}
	return email, nil
}
