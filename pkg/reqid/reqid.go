// Package reqid tags every storefront request with an id that follows it to
// the backend API.
//
// The id is stored in the request context, echoed in the X-Request-ID
// response header, stamped on each outbound API call by pkg/http and
// attached to log lines through logger.WithCtx(ctx):
//
//	r.Use(reqid.Middleware())
//
//	id := reqid.FromCtx(r.Context())
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header carries the id on inbound requests, responses and API calls.
const Header = "X-Request-ID"

// maxLen bounds an id accepted from a client.
const maxLen = 64

// New returns a fresh random id.
func New() string {
	return uuid.NewString()
}

// WithValue stores id in ctx.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the id stored in ctx, or "".
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Valid reports whether a client-supplied id may be reused. Only short
// tokens of letters, digits, '-', '_' and '.' pass, since the id is
// forwarded upstream as a header.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

// Middleware reuses a valid X-Request-ID from the client or issues a new one.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if !Valid(id) {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
