package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/response"
)

// visitorCookie matches visitor.CookieName.
const visitorCookie = "bookstore_visitor"

// Recovery turns a handler panic into a logged 500. http.ErrAbortHandler is
// re-raised so net/http can drop the connection quietly.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.WithCtx(r.Context()).Error("storefront: panic recovered",
				"error", fmt.Sprintf("%v", rec),
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
				"visitor", visitorOf(r),
			)
			response.InternalError(w)
		}()
		next.ServeHTTP(w, r)
	})
}

func visitorOf(r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		return c.Value
	}
	return ""
}
