package logging

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular address", email: "alice@example.com"},
		{name: "address with plus", email: "bob+tag@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed := AnonymizeEmail(tt.email)
			assert.True(t, strings.HasPrefix(hashed, "user:"))
			assert.NotContains(t, hashed, tt.email)
			// Same input hashes to the same value for log correlation
			assert.Equal(t, hashed, AnonymizeEmail(tt.email))
		})
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestErrNil(t *testing.T) {
	attr := Err(nil)
	// An empty group is omitted from output
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:6 chars]", SanitizeToken("secret"))
	assert.NotContains(t, SanitizeToken("ya29.supersecret"), "supersecret")
}

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{level: "debug", enabled: slog.LevelDebug},
		{level: "info", enabled: slog.LevelInfo},
		{level: "warn", enabled: slog.LevelWarn},
		{level: "error", enabled: slog.LevelError},
		{level: "bogus", enabled: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := Setup(tt.level, "text")
			assert.True(t, logger.Enabled(t.Context(), tt.enabled))
		})
	}
}
