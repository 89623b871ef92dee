package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

func TestLogin_AdoptsUser(t *testing.T) {
	f := newFixture(t, testkit.Step{
		Method: http.MethodPost, Path: "/api/auth/login",
		Body: `{"user":{"id":2,"email":"reader@example.com","name":"Reader","role":"CUSTOMER"}}`,
	})
	svc := services.NewAuthService(f.client, f.session, "")

	u, err := svc.Login(context.Background(), "reader@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, customer, u)

	me, ok := svc.Me()
	assert.True(t, ok)
	assert.Equal(t, customer.Email, me.Email)

	_, err = f.store.Get(storage.KeyUser)
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t,
		testkit.Step{Method: http.MethodPost, Path: "/api/auth/login", Status: http.StatusUnauthorized,
			Body: `{"message":"Invalid credentials"}`, Once: true},
		testkit.Step{Method: http.MethodPost, Path: "/api/auth/login", Status: http.StatusInternalServerError, Body: `{}`},
	)
	svc := services.NewAuthService(f.client, f.session, "")
	ctx := context.Background()

	_, err := svc.Login(ctx, "reader@example.com", "wrong")
	assert.Equal(t, "Invalid credentials", services.Message(err))

	_, err = svc.Login(ctx, "reader@example.com", "pw")
	assert.Equal(t, "Login failed", services.Message(err))

	_, err = svc.Login(ctx, "", "")
	assert.Equal(t, "The email field is required., The password field is required.", services.Message(err))
	assert.Len(t, f.mt.Calls(), 2, "empty form never reaches the server")

	assert.False(t, f.session.LoggedIn())
}

func TestRegister_JoinsFieldErrors(t *testing.T) {
	f := newFixture(t, testkit.Step{
		Method: http.MethodPost, Path: "/api/auth/register", Status: http.StatusBadRequest,
		Body: `{"errors":[{"message":"Email already registered"},{"message":"Password too weak"}]}`,
	})
	svc := services.NewAuthService(f.client, f.session, "")

	err := svc.Register(context.Background(), "Reader", "reader@example.com", "pw")
	assert.Equal(t, "Email already registered, Password too weak", services.Message(err))
}

func TestGoogleLogin(t *testing.T) {
	f := newFixture(t, testkit.Step{
		Method: http.MethodPost, Path: "/api/auth/google",
		Body: `{"user":{"id":2,"email":"reader@example.com","role":"CUSTOMER"}}`,
	})
	svc := services.NewAuthService(f.client, f.session, "client-1")
	ctx := context.Background()

	_, err := svc.GoogleLogin(ctx, "garbage")
	assert.Equal(t, "Google login failed", services.Message(err))
	assert.Empty(t, f.mt.Calls())

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"aud": "client-1", "email": "reader@example.com", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	u, err := svc.GoogleLogin(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", u.Email)
	assert.True(t, f.session.LoggedIn())
}

func TestLogout_ServerDownStillClearsEverything(t *testing.T) {
	f := newFixture(t, testkit.Step{Method: http.MethodPost, Path: "/api/auth/logout", Err: errors.New("timeout")})
	f.session.Login(customer)
	f.cart.Add(book(1, "Gita", "10.00", 2))

	services.NewAuthService(f.client, f.session, "").Logout(context.Background())

	assert.False(t, f.session.LoggedIn())
	assert.Zero(t, f.cart.Len())
	for _, key := range []string{storage.KeyUser, storage.KeyCart, storage.KeyCookies} {
		_, err := f.store.Get(key)
		assert.ErrorIs(t, err, storage.ErrNotFound, key)
	}
	f.mt.AssertAllCalled(t)
}
