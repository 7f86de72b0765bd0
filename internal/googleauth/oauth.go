// Package googleauth adapts Google's OAuth endpoints for the rest of the
// application: building the oauth2 configuration, reconstructing token
// sources from stored credentials, and verifying ID tokens.
package googleauth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes is the fixed scope set requested during authorization and used
// when reconstructing credentials. The OpenID Connect scopes yield the
// verified email claim; gmail.send is the only mailbox capability needed.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	gmail.GmailSendScope,
}

// Config carries the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint defaults to Google's; tests point it at a local server.
	Endpoint oauth2.Endpoint
}

// OAuth2 returns the oauth2 configuration for the authorization code flow.
func (c Config) OAuth2() *oauth2.Config {
	endpoint := c.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  c.RedirectURL,
		Scopes:       Scopes,
	}
}

// TokenSource reconstructs a token source from a stored access/refresh pair.
// The expiry is set in the past so the oauth2 transport refreshes through
// the refresh token transparently when Google rejects the access token.
func (c Config) TokenSource(ctx context.Context, accessToken, refreshToken string) oauth2.TokenSource {
	return c.OAuth2().TokenSource(ctx, &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})
}
