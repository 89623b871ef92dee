// Package http is the fluent HTTP client every bookstore backend call goes
// through.
//
// Usage:
//
//	c := http.NewClient("http://localhost:5000/api", http.WithJar(jar))
//
//	resp, err := c.Get("/books").WithContext(ctx).Send()
//	var books []models.Book
//	err = resp.JSON(&books)
//
//	// POST JSON body
//	resp, err := c.Post("/auth/login").
//	    Body(map[string]string{"email": email, "password": pw}).
//	    Send()
//
//	// multipart with an attachment
//	resp, err := c.Post("/orders/pay").
//	    Multipart(http.Form{Fields: fields, Files: []http.File{proof}}).
//	    Send()
//
// Each Send performs exactly one round trip. There is no retry and no
// timeout beyond the caller's context.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	gohttp "net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
	"github.com/shashiranjanraj/bookstore/pkg/reqid"
)

// defaultTransport is the connection-pooled transport used in production.
// Tests inject their own with WithTransport.
var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// ------------------- Client -------------------

// Client binds a base URL, a cookie jar and a transport.
type Client struct {
	base   string
	native *gohttp.Client
}

// Option configures a Client.
type Option func(*gohttp.Client)

// WithJar stores and replays cookies through jar.
func WithJar(jar gohttp.CookieJar) Option {
	return func(c *gohttp.Client) { c.Jar = jar }
}

// WithTransport replaces the network transport.
func WithTransport(rt gohttp.RoundTripper) Option {
	return func(c *gohttp.Client) { c.Transport = rt }
}

func NewClient(baseURL string, opts ...Option) *Client {
	native := &gohttp.Client{Transport: defaultTransport}
	for _, o := range opts {
		o(native)
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), native: native}
}

// Get starts a GET request.
func (c *Client) Get(path string) *Request { return c.newRequest(gohttp.MethodGet, path) }

// Post starts a POST request.
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }

// Put starts a PUT request.
func (c *Client) Put(path string) *Request { return c.newRequest(gohttp.MethodPut, path) }

// Delete starts a DELETE request.
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

// routeOf folds a request path into a low-cardinality metrics label:
// the query is dropped, an absolute URL keeps only its path and numeric
// segments become {id}.
func routeOf(path string) string {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segs {
		if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
			segs[i] = "{id}"
		}
	}
	return "/" + strings.Join(segs, "/")
}

// ------------------- Request -------------------

// File is one binary part of a multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body.
type Form struct {
	Fields map[string]string
	Files  []File
}

// Request is a fluent HTTP request builder.
type Request struct {
	client  *Client
	method  string
	url     string
	route   string
	headers map[string]string
	body    interface{}
	form    *Form
	ctx     context.Context
}

func (c *Client) newRequest(method, path string) *Request {
	return &Request{
		client:  c,
		method:  method,
		url:     c.resolve(path),
		route:   routeOf(path),
		headers: map[string]string{"Accept": "application/json"},
		ctx:     context.Background(),
	}
}

// Body sets a JSON body. v is marshalled automatically.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	r.form = nil
	return r
}

// Multipart sets a multipart/form-data body.
func (r *Request) Multipart(f Form) *Request {
	r.form = &f
	r.body = nil
	return r
}

// WithContext sets the request context. Cancelling it aborts the call.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// ------------------- Send -------------------

// TransportError is returned by Send when no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Send executes the request once and returns the buffered Response.
// Non-2xx statuses are not errors; check Response.OK.
func (r *Request) Send() (*Response, error) {
	start := time.Now()

	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	req, err := gohttp.NewRequestWithContext(r.ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	id := reqid.FromCtx(r.ctx)
	if id == "" {
		id = reqid.New()
	}
	req.Header.Set(reqid.Header, id)

	log := logger.WithCtx(r.ctx)

	resp, err := r.client.native.Do(req)
	if err != nil {
		metrics.ObserveAPICall(r.method, r.route, "error", start)
		log.Debug("http: transport failure", "method", r.method, "url", r.url, "error", err)
		return nil, &TransportError{Method: r.method, URL: r.url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveAPICall(r.method, r.route, "error", start)
		return nil, &TransportError{Method: r.method, URL: r.url, Err: fmt.Errorf("read body: %w", err)}
	}

	metrics.ObserveAPICall(r.method, r.route, strconv.Itoa(resp.StatusCode), start)
	log.Debug("http: call",
		"method", r.method, "url", r.url, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", id)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.form != nil {
		return encodeForm(r.form)
	}
	if r.body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.body)
	if err != nil {
		return nil, "", fmt.Errorf("http: marshal body: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}

func encodeForm(f *Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("http: multipart field %s: %w", k, err)
		}
	}

	for _, file := range f.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("http: multipart file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("http: multipart file %s: %w", file.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("http: multipart close: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}
