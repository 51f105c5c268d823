package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthStateRoundTrip(t *testing.T) {
	encoded, err := oauthState{Flow: "register"}.encode()
	require.NoError(t, err)

	decoded, err := decodeOAuthState(encoded)
	require.NoError(t, err)
	assert.Equal(t, "register", decoded.Flow)
}

func TestOAuthStateCarriesFreshNonce(t *testing.T) {
	a, err := oauthState{Flow: "login"}.encode()
	require.NoError(t, err)
	b, err := oauthState{Flow: "login"}.encode()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecodeOAuthStateRejectsMalformedInput(t *testing.T) {
	for _, state := range []string{"", "no-dot", "a.b.c", "x.!!!not-base64!!!"} {
		_, err := decodeOAuthState(state)
		assert.Error(t, err, "state %q", state)
	}
}
