package services

import (
	"context"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/session"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
)

type AuthService struct {
	api            *api.Client
	session        *session.Session
	googleClientID string
}

func NewAuthService(c *api.Client, s *session.Session, googleClientID string) *AuthService {
	return &AuthService{api: c, session: s, googleClientID: googleClientID}
}

// Login signs in with email and password and adopts the returned user.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	cred := api.Credentials{Email: email, Password: password}
	if err := validate.Check(cred); err != nil {
		return models.User{}, invalid(err)
	}

	user, err := s.api.Login(ctx, cred)
	if err != nil {
		return models.User{}, fail(err, "Login failed")
	}

	s.session.Login(user)
	logger.WithCtx(ctx).Info("auth: signed in", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Register creates the account. The user signs in afterwards.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	reg := api.Registration{Name: name, Email: email, Password: password}
	if err := validate.Check(reg); err != nil {
		return invalid(err)
	}
	if err := s.api.Register(ctx, reg); err != nil {
		return fail(err, "Registration failed")
	}
	return nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (models.User, error) {
	if _, err := api.ParseGoogleCredential(credential, s.googleClientID); err != nil {
		return models.User{}, &Failure{Text: "Google login failed", Err: err}
	}

	user, err := s.api.GoogleLogin(ctx, credential)
	if err != nil {
		return models.User{}, fail(err, "Google login failed")
	}

	s.session.Login(user)
	logger.WithCtx(ctx).Info("auth: signed in with google", "user_id", user.ID)
	return user, nil
}

// Logout always succeeds locally; see session.Logout.
func (s *AuthService) Logout(ctx context.Context) {
	s.session.Logout(ctx)
	s.api.ResetCookies()
}

// Me returns the signed-in user.
func (s *AuthService) Me() (models.User, bool) {
	return s.session.User()
}
