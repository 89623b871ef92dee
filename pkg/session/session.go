// Package session holds the client's local record of the signed-in user.
//
// The record is advisory. It is adopted from storage at startup without
// asking the server whether it is still valid; a revoked session stays
// visible until an API call answers 401. Authorization is always enforced
// server-side.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/event"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

// LogoutTimeout bounds the server logout call so a stalled backend cannot
// keep the local session alive.
var LogoutTimeout = 5 * time.Second

// Notifier tells the server the user signed out. *api.Client satisfies it.
type Notifier interface {
	Logout(ctx context.Context) error
}

// CartDiscarder is the slice of the cart the session clears on logout.
type CartDiscarder interface {
	Discard()
}

// Session is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	user    *models.User
	loading atomic.Bool

	store    storage.Store
	bus      *event.Bus
	notifier Notifier
	cart     CartDiscarder
}

// New restores the persisted user, if any. notifier and cart may be nil.
func New(store storage.Store, bus *event.Bus, notifier Notifier, cart CartDiscarder) *Session {
	s := &Session{store: store, bus: bus, notifier: notifier, cart: cart}

	s.loading.Store(true)
	s.user = restore(store)
	s.loading.Store(false)

	return s
}

func restore(store storage.Store) *models.User {
	raw, err := store.Get(storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("session: restore failed", "error", err)
		return nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == 0 && u.Email == "" {
		logger.Warn("session: discarding unreadable session", "error", err)
		_ = store.Remove(storage.KeyUser)
		return nil
	}
	return &u
}

// Loading is true only while the persisted session is being read.
func (s *Session) Loading() bool { return s.loading.Load() }

// User returns a copy of the current user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a user is present.
func (s *Session) LoggedIn() bool {
	_, ok := s.User()
	return ok
}

// IsAdmin reports whether the current user carries the ADMIN role.
func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

// Login replaces the current user unconditionally and persists it.
func (s *Session) Login(user models.User) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err == nil {
		err = s.store.Set(storage.KeyUser, raw)
	}
	if err != nil {
		logger.Warn("session: persist failed", "error", err)
	}

	s.bus.Fire(event.SessionChanged, &u)
}

// Logout notifies the server, then clears the user and the cart from memory
// and storage. The notification gets at most LogoutTimeout; a failed or
// timed-out notification is logged and otherwise ignored.
func (s *Session) Logout(ctx context.Context) {
	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(ctx, LogoutTimeout)
		if err := s.notifier.Logout(nctx); err != nil {
			logger.WithCtx(ctx).Warn("session: server logout failed", "error", err)
		}
		cancel()
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Remove(storage.KeyUser); err != nil {
		logger.Warn("session: remove failed", "error", err)
	}
	if s.cart != nil {
		s.cart.Discard()
	}

	s.bus.Fire(event.SessionChanged, (*models.User)(nil))
}
