package googleauth

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestOAuth2ConfigDefaultsToGoogleEndpoint(t *testing.T) {
	conf := Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/auth/callback",
	}.OAuth2()

	assert.Contains(t, conf.Endpoint.AuthURL, "accounts.google.com")
	assert.Contains(t, conf.Endpoint.TokenURL, "googleapis.com")
	assert.Equal(t, Scopes, conf.Scopes)
}

func TestOAuth2ConfigCustomEndpoint(t *testing.T) {
	conf := Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://127.0.0.1:9999/auth",
			TokenURL: "http://127.0.0.1:9999/token",
		},
	}.OAuth2()

	assert.Equal(t, "http://127.0.0.1:9999/token", conf.Endpoint.TokenURL)
}

func TestScopesIncludeSendAndIdentity(t *testing.T) {
	joined := strings.Join(Scopes, " ")
	assert.Contains(t, joined, "openid")
	assert.Contains(t, joined, "userinfo.email")
	assert.Contains(t, joined, "userinfo.profile")
	assert.Contains(t, joined, "gmail.send")
}

func TestAuthCodeURLParams(t *testing.T) {
	conf := Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8000/auth/callback",
	}.OAuth2()

	raw := conf.AuthCodeURL("some-state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "http://localhost:8000/auth/callback", q.Get("redirect_uri"))
}
