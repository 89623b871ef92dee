package http_test

import (
	"context"
	"errors"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bhttp "github.com/shashiranjanraj/bookstore/pkg/http"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
	"github.com/shashiranjanraj/bookstore/pkg/reqid"
)

func TestSend_JSONBody(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.c"}`, string(body))
		w.WriteHeader(gohttp.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := bhttp.NewClient(srv.URL + "/api/")
	resp, err := c.Post("auth/login").Body(map[string]string{"email": "a@b.c"}).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var out struct{ OK bool }
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out.OK)
}

func TestSend_Multipart(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "12", r.FormValue("orderId"))
		f, hdr, err := r.FormFile("proof")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "receipt.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	}))
	defer srv.Close()

	c := bhttp.NewClient(srv.URL)
	resp, err := c.Post("/orders/pay").Multipart(bhttp.Form{
		Fields: map[string]string{"orderId": "12"},
		Files: []bhttp.File{{
			Field: "proof", Name: "receipt.png", ContentType: "image/png",
			Data: []byte{0x89, 'P', 'N', 'G'},
		}},
	}).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusOK, resp.StatusCode)
}

func TestSend_ForwardsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		got = r.Header.Get(reqid.Header)
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "req-123")
	_, err := bhttp.NewClient(srv.URL).Get("/books").WithContext(ctx).Send()
	require.NoError(t, err)
	assert.Equal(t, "req-123", got)

	_, err = bhttp.NewClient(srv.URL).Get("/books").Send()
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "req-123", got)
}

func TestSend_NoRetryOnServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(gohttp.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := bhttp.NewClient(srv.URL).Get("/books").Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, gohttp.StatusBadGateway, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestSend_AbsoluteURLBypassesBase(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
	}))
	defer srv.Close()

	c := bhttp.NewClient("http://127.0.0.1:1/api")
	_, err := c.Get(srv.URL + "/reverse").Send()
	require.NoError(t, err)
}

func TestSend_TransportError(t *testing.T) {
	rt := roundTripFunc(func(*gohttp.Request) (*gohttp.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := bhttp.NewClient("http://backend", bhttp.WithTransport(rt)).Get("/books").Send()

	var te *bhttp.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, gohttp.MethodGet, te.Method)
}

type roundTripFunc func(*gohttp.Request) (*gohttp.Response, error)

func (f roundTripFunc) RoundTrip(r *gohttp.Request) (*gohttp.Response, error) { return f(r) }

func TestSend_RecordsRouteMetrics(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusNoContent)
	}))
	defer srv.Close()

	counter := metrics.APIRequestsTotal.WithLabelValues(gohttp.MethodPut, "/admin/orders/{id}/status", "204")
	before := testutil.ToFloat64(counter)

	c := bhttp.NewClient(srv.URL)
	_, err := c.Put("/admin/orders/42/status").Send()
	require.NoError(t, err)
	_, err = c.Put("/admin/orders/7/status?x=1").Send()
	require.NoError(t, err)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
