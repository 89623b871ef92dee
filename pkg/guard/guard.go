// Package guard gates pages and routes on the local session.
//
// Checks are advisory: they keep signed-out visitors and customers away from
// views they cannot use. The backend enforces the same rules on every call.
package guard

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bookstore/pkg/response"
)

var (
	// ErrLoading: the session has not been read yet; render nothing.
	ErrLoading = errors.New("guard: session loading")
	// ErrLoginRequired: no signed-in user.
	ErrLoginRequired = errors.New("guard: login required")
	// ErrForbidden: signed in, but not an admin.
	ErrForbidden = errors.New("guard: admin only")
)

// Subject is what a guard inspects. *session.Session satisfies it.
type Subject interface {
	Loading() bool
	LoggedIn() bool
	IsAdmin() bool
}

// Require passes when a user is signed in.
func Require(s Subject) error {
	if s.Loading() {
		return ErrLoading
	}
	if !s.LoggedIn() {
		return ErrLoginRequired
	}
	return nil
}

// RequireAdmin passes when the signed-in user carries the ADMIN role.
func RequireAdmin(s Subject) error {
	if err := Require(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Status maps a guard error to the HTTP status the storefront answers with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrLoading):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusOK
}

// Resolver finds the Subject for a request.
type Resolver func(r *http.Request) Subject

// Login returns middleware that allows only signed-in visitors.
func Login(resolve Resolver) func(http.Handler) http.Handler {
	return middleware(resolve, Require, "Please login to continue")
}

// Admin returns middleware that allows only admins.
func Admin(resolve Resolver) func(http.Handler) http.Handler {
	return middleware(resolve, RequireAdmin, "Admin access required")
}

func middleware(resolve Resolver, check func(Subject) error, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := resolve(r)
			if s == nil {
				response.Unauthorized(w)
				return
			}
			if err := check(s); err != nil {
				code := Status(err)
				if code == http.StatusForbidden {
					response.Error(w, code, message)
				} else {
					response.Error(w, code, "Please login to continue")
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
