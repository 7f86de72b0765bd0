// Package mailer reconstructs a delegated credential per request, builds a
// MIME-encoded message, and hands it to the Gmail send endpoint.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sendgate/sendgate/internal/credstore"
	"github.com/sendgate/sendgate/internal/googleauth"
	"github.com/sendgate/sendgate/internal/logging"
)

// RawSender is the external send capability: it accepts a fully-formed,
// URL-safe base64 encoded message for the credential's own mailbox and
// returns the provider's message ID.
type RawSender interface {
	SendRaw(ctx context.Context, raw string) (string, error)
}

// SenderFactory builds a RawSender authenticated by the given token source.
type SenderFactory func(ctx context.Context, ts oauth2.TokenSource) (RawSender, error)

// Dispatcher is the one-shot send pipeline. Each Send ends in exactly one
// of: sent, not-authenticated, or send-error.
type Dispatcher struct {
	creds     credstore.Store
	auth      googleauth.Config
	newSender SenderFactory
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(creds credstore.Store, auth googleauth.Config, newSender SenderFactory, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		creds:     creds,
		auth:      auth,
		newSender: newSender,
		logger:    logger,
	}
}

// Send looks up the sender's credential, builds the message, and submits
// it. The attachment is optional. No external call is made when the
// identity has no stored credential.
func (d *Dispatcher) Send(ctx context.Context, identity, to, subject, body string, att *Attachment) error {
	if to == "" {
		return &SendError{Err: fmt.Errorf("recipient is required")}
	}

	log := d.logger.With(
		slog.String("dispatch_id", uuid.NewString()),
		logging.UserHash(identity),
	)

	rec, err := d.creds.Get(ctx, identity)
	if errors.Is(err, credstore.ErrNotFound) {
		return &NotAuthenticatedError{Identity: identity}
	}
	if err != nil {
		return &SendError{Err: fmt.Errorf("credential lookup: %w", err)}
	}

	// Rebuild the credential from the stored pair; the oauth2 transport
	// handles refresh through the refresh token transparently.
	ts := d.auth.TokenSource(ctx, rec.AccessToken, rec.RefreshToken)

	sender, err := d.newSender(ctx, ts)
	if err != nil {
		return &SendError{Err: err}
	}

	msg := &Message{To: to, Subject: subject, Body: body, Attachment: att}
	raw, err := msg.Encode()
	if err != nil {
		return &SendError{Err: err}
	}

	messageID, err := sender.SendRaw(ctx, raw)
	if err != nil {
		return &SendError{Err: err}
	}

	log.Info("message sent",
		slog.String("message_id", messageID),
		slog.Bool("has_attachment", att != nil),
	)
	return nil
}
