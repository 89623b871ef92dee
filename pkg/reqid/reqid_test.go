package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bookstore/pkg/reqid"
)

func TestValid(t *testing.T) {
	assert.True(t, reqid.Valid("abc-123_x.y"))
	assert.True(t, reqid.Valid(reqid.New()))
	assert.False(t, reqid.Valid(""))
	assert.False(t, reqid.Valid("has space"))
	assert.False(t, reqid.Valid("line\r\nbreak"))
	assert.False(t, reqid.Valid(strings.Repeat("a", 65)))
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "client-id-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-id-1", seen)
	assert.Equal(t, "client-id-1", rec.Header().Get(reqid.Header))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "bad id!")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id!", seen)
	assert.True(t, reqid.Valid(seen))
	assert.Equal(t, seen, rec.Header().Get(reqid.Header))
}
