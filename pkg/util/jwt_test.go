package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := GenerateJWT("jane", "Manager", "budget-ledger", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, "budget-ledger", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jane", claims.Subject)
	assert.Equal(t, "Manager", claims.Role)

	_, err = ParseJWT(tok, "budget-ledger", "other-secret")
	assert.Error(t, err)
	_, err = ParseJWT(tok, "someone-else", "secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	tok, err := GenerateJWT("jane", "User", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(tok, "", "secret")
	assert.Error(t, err)
}

func TestJWTRequiresSubject(t *testing.T) {
	tok, err := GenerateJWT("", "User", "", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(tok, "", "secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractToken(r)
	assert.ErrorIs(t, err, ErrNoToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrNoToken)

	r.Header.Set("Authorization", "bearer abc.def")
	tok, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)
}
