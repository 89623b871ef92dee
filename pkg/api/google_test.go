package api_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/pkg/api"
)

func googleToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-googles-key"))
	require.NoError(t, err)
	return tok
}

func TestParseGoogleCredential(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	id, err := api.ParseGoogleCredential(googleToken(t, jwt.MapClaims{
		"aud": "client-1", "email": "g@example.com", "name": "G", "exp": exp,
	}), "client-1")
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", id.Email)
	assert.Equal(t, "G", id.Name)

	_, err = api.ParseGoogleCredential(googleToken(t, jwt.MapClaims{
		"aud": "someone-else", "email": "g@example.com", "exp": exp,
	}), "client-1")
	assert.ErrorIs(t, err, api.ErrCredential)

	_, err = api.ParseGoogleCredential(googleToken(t, jwt.MapClaims{"aud": "client-1", "exp": exp}), "client-1")
	assert.ErrorIs(t, err, api.ErrCredential)

	_, err = api.ParseGoogleCredential(googleToken(t, jwt.MapClaims{
		"aud": "client-1", "email": "g@example.com", "exp": time.Now().Add(-time.Hour).Unix(),
	}), "client-1")
	assert.ErrorIs(t, err, api.ErrCredential)

	_, err = api.ParseGoogleCredential("not.a.jwt", "client-1")
	assert.ErrorIs(t, err, api.ErrCredential)
}
