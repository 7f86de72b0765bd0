// Package credstore holds delegated OAuth credentials keyed by user identity.
//
// A Record is written on every successful authorization callback (last write
// wins) and read back on every send request. The store is the only owner of
// raw tokens; other packages borrow a copy per request.
package credstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no credential exists for an identity.
var ErrNotFound = errors.New("credential not found")

// Record is the credential tuple for one user identity.
type Record struct {
	// Identity is the user's verified email address. It is only ever
	// sourced from a verified ID-token claim, never from client input.
	Identity     string
	AccessToken  string
	RefreshToken string
}

// Store is the narrow persistence interface for credentials.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes or overwrites the record for rec.Identity.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for identity, or ErrNotFound.
	Get(ctx context.Context, identity string) (Record, error)
}
