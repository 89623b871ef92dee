// Package visitor gives every storefront browser its own client state.
//
// A visitor is identified by the bookstore_visitor cookie (a random uuid).
// Each request gets an *app.App built over the visitor's slice of the shared
// store, so the cart, the signed-in user and the backend cookies of one
// browser never mix with another's. Concurrent requests of one visitor each
// restore their own copy; the last write wins.
package visitor

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/event"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/response"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

// CookieName is the visitor cookie.
const CookieName = "bookstore_visitor"

const cookieMaxAge = 60 * 60 * 24 * 365

type ctxKey struct{}

type visit struct {
	id  string
	app *app.App
}

// Manager builds per-visitor Apps over one shared store.
type Manager struct {
	store  storage.Store
	opts   app.Options
	hub    *ws.Hub
	secure bool
}

// NewManager returns a Manager. hub may be nil when no live push is served.
// secure marks the visitor cookie Secure.
func NewManager(store storage.Store, opts app.Options, hub *ws.Hub, secure bool) *Manager {
	return &Manager{store: store, opts: opts, hub: hub, secure: secure}
}

// Middleware resolves the visitor, issuing a cookie on first sight, and
// attaches its App to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.identify(w, r)

		a, err := m.Open(id)
		if err != nil {
			logger.WithCtx(r.Context()).Error("visitor: building app", "visitor", id, "error", err)
			response.InternalError(w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, &visit{id: id, app: a})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Open builds the App for visitor id and forwards its change events to the
// visitor's live pages.
func (m *Manager) Open(id string) (*app.App, error) {
	opts := m.opts
	bus := event.NewBus()
	opts.Bus = bus
	if m.hub != nil {
		hub := m.hub
		for _, name := range []string{event.CartChanged, event.SessionChanged} {
			name := name
			bus.Listen(name, func(payload interface{}) {
				hub.Publish(id, ws.Frame{Event: name, Data: payload})
			})
		}
	}
	return app.New(storage.Prefixed(m.store, "visitor:"+id+":"), opts)
}

func (m *Manager) identify(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// ID returns the visitor id of the request, or "".
func ID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(*visit); ok {
		return v.id
	}
	return ""
}

// App returns the visitor's App, or nil outside Middleware.
func App(ctx context.Context) *app.App {
	if v, ok := ctx.Value(ctxKey{}).(*visit); ok {
		return v.app
	}
	return nil
}

// Subject is a guard.Resolver over the visitor's session.
func Subject(r *http.Request) guard.Subject {
	a := App(r.Context())
	if a == nil {
		return nil
	}
	return a.Session
}

// ─── Flash ────────────────────────────────────────────────────────────────────

// SetFlash stores a one-shot notice for the visitor's next page.
func SetFlash(a *app.App, message string) {
	if err := a.Store.Set(storage.KeyFlash, []byte(message)); err != nil {
		logger.Warn("visitor: storing flash", "error", err)
	}
}

// TakeFlash returns the pending notice and forgets it.
func TakeFlash(a *app.App) string {
	raw, err := a.Store.Get(storage.KeyFlash)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("visitor: reading flash", "error", err)
		}
		return ""
	}
	if err := a.Store.Remove(storage.KeyFlash); err != nil {
		logger.Warn("visitor: clearing flash", "error", err)
	}
	return string(raw)
}
