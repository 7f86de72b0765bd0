package authflow

import "fmt"

// AuthExchangeError indicates the authorization code exchange with the
// token endpoint failed: bad code, unknown state, network failure, or a
// provider error.
type AuthExchangeError struct {
	Err error
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed: %v", e.Err)
}

func (e *AuthExchangeError) Unwrap() error {
	return e.Err
}

// TokenVerificationError indicates the ID token returned by the provider
// could not be verified, or carried no email claim.
type TokenVerificationError struct {
	Err error
}

func (e *TokenVerificationError) Error() string {
	return fmt.Sprintf("identity token verification failed: %v", e.Err)
}

func (e *TokenVerificationError) Unwrap() error {
	return e.Err
}
