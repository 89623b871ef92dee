// Package services holds the page logic of the bookstore client: what each
// view does when the user acts, independent of how it is rendered. The CLI
// and the storefront server both drive these.
//
// Every failure a user can see carries one display string, available
// through Message.
package services

import (
	"errors"

	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
)

// Failure is an error with the text shown to the user.
type Failure struct {
	Text string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Text + ": " + f.Err.Error()
	}
	return f.Text
}

func (f *Failure) Unwrap() error { return f.Err }

// UserMessage is the display string.
func (f *Failure) UserMessage() string { return f.Text }

// fail wraps an API error with its display string, falling back to fallback.
func fail(err error, fallback string) error {
	return &Failure{Text: api.Display(err, fallback), Err: err}
}

// invalid turns form validation errors into a Failure.
func invalid(err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return &Failure{Text: verrs.Error(), Err: err}
	}
	return err
}

// Message returns the one string to show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	switch {
	case errors.Is(err, guard.ErrLoginRequired), errors.Is(err, guard.ErrLoading):
		return "Please login to continue"
	case errors.Is(err, guard.ErrForbidden):
		return "Admin access required"
	}
	return err.Error()
}
