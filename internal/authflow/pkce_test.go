package authflow

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	verifier, err := GenerateCodeVerifier()
	require.NoError(t, err)

	// RFC 7636 requires 43-128 characters
	assert.GreaterOrEqual(t, len(verifier), 43)
	assert.LessOrEqual(t, len(verifier), 128)

	_, err = base64.RawURLEncoding.DecodeString(verifier)
	assert.NoError(t, err, "verifier must be valid base64url")
}

func TestGenerateCodeVerifierUnique(t *testing.T) {
	a, err := GenerateCodeVerifier()
	require.NoError(t, err)
	b, err := GenerateCodeVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	_, err = base64.RawURLEncoding.DecodeString(state)
	assert.NoError(t, err, "state must be valid base64url")

	other, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)
}
