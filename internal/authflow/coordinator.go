// Package authflow drives the delegated-authorization handshake with
// Google: producing the consent redirect URL and completing the code
// exchange on callback.
//
// Each login attempt gets its own flow record keyed by the OAuth state
// parameter, so concurrent logins from different browsers cannot corrupt
// each other's in-flight exchange.
package authflow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/sendgate/sendgate/internal/credstore"
	"github.com/sendgate/sendgate/internal/googleauth"
	"github.com/sendgate/sendgate/internal/logging"
)

// Coordinator implements the authorization handshake.
type Coordinator struct {
	oauth    *oauth2.Config
	flows    *FlowStore
	verifier googleauth.ClaimsVerifier
	creds    credstore.Store
	logger   *slog.Logger
}

// New creates a Coordinator.
func New(conf *oauth2.Config, flows *FlowStore, verifier googleauth.ClaimsVerifier, creds credstore.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		oauth:    conf,
		flows:    flows,
		verifier: verifier,
		creds:    creds,
		logger:   logger,
	}
}

// Start begins a new authorization attempt and returns the URL the browser
// should be redirected to. access_type=offline requests a refresh token;
// prompt=consent forces explicit re-consent so Google reissues one even for
// returning users.
func (c *Coordinator) Start(_ context.Context) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}

	c.flows.Begin(state, verifier)

	url := c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	return url, nil
}

// Complete finishes the handshake for the given state and authorization
// code: it exchanges the code for tokens, verifies the ID token, stores the
// credential record, and returns the verified identity.
//
// Raw tokens never leave this method except into the credential store.
func (c *Coordinator) Complete(ctx context.Context, state, code string) (string, error) {
	flow, err := c.flows.Consume(state)
	if err != nil {
		return "", &AuthExchangeError{Err: fmt.Errorf("state: %w", err)}
	}

	tok, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(flow.Verifier))
	if err != nil {
		return "", &AuthExchangeError{Err: err}
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", &TokenVerificationError{Err: fmt.Errorf("token response has no id_token")}
	}

	identity, err := c.verifier.VerifyEmail(ctx, rawIDToken)
	if err != nil {
		return "", &TokenVerificationError{Err: err}
	}

	if err := c.creds.Put(ctx, credstore.Record{
		Identity:     identity,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}

	c.logger.Info("authorization completed",
		logging.UserHash(identity),
		slog.Bool("refresh_token_issued", tok.RefreshToken != ""),
	)
	return identity, nil
}
