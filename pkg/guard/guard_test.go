package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bookstore/pkg/guard"
)

type subject struct{ loading, in, admin bool }

func (s subject) Loading() bool  { return s.loading }
func (s subject) LoggedIn() bool { return s.in }
func (s subject) IsAdmin() bool  { return s.admin }

func TestRequire(t *testing.T) {
	assert.ErrorIs(t, guard.Require(subject{loading: true}), guard.ErrLoading)
	assert.ErrorIs(t, guard.Require(subject{}), guard.ErrLoginRequired)
	assert.NoError(t, guard.Require(subject{in: true}))
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, guard.RequireAdmin(subject{}), guard.ErrLoginRequired)
	assert.ErrorIs(t, guard.RequireAdmin(subject{in: true}), guard.ErrForbidden)
	assert.NoError(t, guard.RequireAdmin(subject{in: true, admin: true}))
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name string
		mw   func(guard.Resolver) func(http.Handler) http.Handler
		s    guard.Subject
		want int
	}{
		{"login/anonymous", guard.Login, subject{}, http.StatusUnauthorized},
		{"login/customer", guard.Login, subject{in: true}, http.StatusNoContent},
		{"admin/customer", guard.Admin, subject{in: true}, http.StatusForbidden},
		{"admin/admin", guard.Admin, subject{in: true, admin: true}, http.StatusNoContent},
		{"admin/no subject", guard.Admin, nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.mw(func(*http.Request) guard.Subject { return tc.s })(ok)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
