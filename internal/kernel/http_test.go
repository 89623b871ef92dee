package kernel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/internal/kernel"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/middleware"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: base, client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path, contentType string, body []byte) (int, envelope) {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, bytes.NewReader(body))
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func (b *browser) json(method, path, body string) (int, envelope) {
	return b.do(method, path, "application/json", []byte(body))
}

func newStorefront(t *testing.T, mt *testkit.MockTransport) (*httptest.Server, *kernel.HTTPKernel) {
	k := kernel.NewHTTPKernel(kernel.Config{
		Store: storage.NewMemory(),
		App: app.Options{
			APIBaseURL:     "http://backend.test/api",
			AppKey:         "test-key",
			GoogleClientID: "client.apps.example",
			GeocoderURL:    "http://geo.test",
			Transport:      mt,
		},
		Limiter: middleware.NewLimiter(6000, 100, nil),
	})
	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return srv, k
}

func TestStorefront_ShoppingJourney(t *testing.T) {
	mt := testkit.NewMockTransport(
		testkit.Step{Method: http.MethodPost, Path: "/api/auth/login",
			Body: `{"user":{"id":2,"email":"r@example.com","name":"Reader","role":"CUSTOMER"}}`},
		testkit.Step{Method: http.MethodGet, Path: "/api/books",
			Body: `[{"id":1,"title":"Gita","author":"Vyasa","price":"10.00","stock":1}]`},
		testkit.Step{Method: http.MethodGet, Path: "/api/addresses",
			Body: `[{"id":6,"village":"E","mandal":"F","district":"G","state":"H","pincode":"2","isDefault":true}]`},
		testkit.Step{Method: http.MethodPost, Path: "/api/orders/pay", Body: `{}`},
		testkit.Step{Method: http.MethodPost, Path: "/api/orders", Status: http.StatusCreated,
			Body: `{"id":90,"totalAmount":"10.00","status":"PENDING"}`},
		testkit.Step{Method: http.MethodGet, Path: "/api/orders", Body: `[{"id":90,"status":"PENDING"}]`},
	)
	srv, _ := newStorefront(t, mt)
	b := newBrowser(t, srv.URL)

	code, env := b.json(http.MethodPost, "/api/cart/items", `{"bookId":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please login to add to cart", env.Message)

	code, _ = b.json(http.MethodPost, "/api/auth/login", `{"email":"r@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)

	code, env = b.json(http.MethodPost, "/api/cart/items", `{"bookId":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, `Added "Gita" to cart`, env.Message)

	_, env = b.json(http.MethodPost, "/api/cart/items", `{"bookId":1}`)
	assert.Equal(t, `Only 1 of "Gita" in stock`, env.Message)

	code, env = b.json(http.MethodGet, "/api/admin/orders", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", env.Message)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("addressId", "6"))
	require.NoError(t, mw.WriteField("note", "UPI ref 123"))
	require.NoError(t, mw.Close())

	code, env = b.do(http.MethodPost, "/api/checkout", mw.FormDataContentType(), form.Bytes())
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "Order placed! Waiting for admin to verify payment.", env.Message)

	pay := mt.CallsTo(http.MethodPost, "/api/orders/pay")
	require.Len(t, pay, 1)
	assert.Contains(t, string(pay[0].Body), "MANUAL")

	_, env = b.json(http.MethodGet, "/api/orders", "")
	assert.Equal(t, "Order placed! Waiting for admin to verify payment.", env.Message)
	_, env = b.json(http.MethodGet, "/api/orders", "")
	assert.Empty(t, env.Message, "the confirmation shows once")

	_, env = b.json(http.MethodGet, "/api/cart", "")
	assert.JSONEq(t, `{"lines":[],"count":0,"total":"0"}`, string(env.Data))
}

func TestStorefront_VisitorsDoNotShareState(t *testing.T) {
	mt := testkit.NewMockTransport(testkit.Step{Method: http.MethodPost, Path: "/api/auth/login",
		Body: `{"user":{"id":1,"email":"admin@example.com","role":"ADMIN"}}`})
	srv, _ := newStorefront(t, mt)

	alice := newBrowser(t, srv.URL)
	code, _ := alice.json(http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, code)

	_, env := alice.json(http.MethodGet, "/api/me", "")
	assert.Contains(t, string(env.Data), `"isAdmin":true`)

	bob := newBrowser(t, srv.URL)
	_, env = bob.json(http.MethodGet, "/api/me", "")
	assert.Contains(t, string(env.Data), `"user":null`)

	code, _ = bob.json(http.MethodGet, "/api/addresses", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestStorefront_LogoutClearsVisitor(t *testing.T) {
	mt := testkit.NewMockTransport(
		testkit.Step{Method: http.MethodPost, Path: "/api/auth/login",
			Body: `{"user":{"id":2,"email":"r@example.com","role":"CUSTOMER"}}`},
		testkit.Step{Method: http.MethodPost, Path: "/api/auth/logout", Status: http.StatusInternalServerError},
	)
	srv, _ := newStorefront(t, mt)
	b := newBrowser(t, srv.URL)

	b.json(http.MethodPost, "/api/auth/login", `{"email":"r@example.com","password":"pw"}`)
	code, _ := b.json(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, code)

	_, env := b.json(http.MethodGet, "/api/me", "")
	assert.Contains(t, string(env.Data), `"user":null`)
}

func TestStorefront_Operational(t *testing.T) {
	srv, k := newStorefront(t, testkit.NewMockTransport())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	for _, r := range k.Routes() {
		names = append(names, r.Method+" "+r.Path)
	}
	assert.Contains(t, names, "POST /api/checkout")
	assert.Contains(t, names, "PUT /api/admin/orders/{id}/status")
	assert.NotContains(t, strings.Join(names, ","), "/ws", "no hub, no live route")
}

func TestStorefront_LivePushOverWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	k := kernel.NewHTTPKernel(kernel.Config{
		Store:   storage.NewMemory(),
		App:     app.Options{APIBaseURL: "http://backend.test/api", AppKey: "test-key", Transport: testkit.NewMockTransport()},
		Hub:     hub,
		Limiter: middleware.NewLimiter(6000, 100, nil),
	})
	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)

	connect := func(b *browser) *websocket.Conn {
		code, _ := b.json(http.MethodGet, "/api/me", "")
		require.Equal(t, http.StatusOK, code)

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		hdr := http.Header{}
		for _, c := range b.client.Jar.Cookies(u) {
			if c.Name == visitor.CookieName {
				hdr.Add("Cookie", c.String())
			}
		}
		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", hdr)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	alice := newBrowser(t, srv.URL)
	bob := newBrowser(t, srv.URL)
	aliceConn := connect(alice)
	bobConn := connect(bob)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	code, _ := alice.json(http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)

	aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := aliceConn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"cart.changed","data":[]}`, string(msg))

	bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "other visitors' pages stay quiet")
}
