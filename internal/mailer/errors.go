package mailer

import "fmt"

// NotAuthenticatedError indicates no credential is stored for the claimed
// identity. It is reported to the caller and is not fatal.
type NotAuthenticatedError struct {
	Identity string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("user %s is not authenticated", e.Identity)
}

// SendError indicates the provider rejected or could not deliver the
// message, including expired or revoked credentials.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
