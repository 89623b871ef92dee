// Package api is the client for the bookstore REST backend.
//
// Every method performs exactly one request. Failures come back as *Error,
// and call sites turn them into one display string with Display:
//
//	if err := c.CreateAddress(ctx, form); err != nil {
//		notice = api.Display(err, "Failed to save address")
//	}
//
// Payloads carrying an attachment are sent as multipart/form-data; all
// others as JSON.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/shashiranjanraj/bookstore/app/models"
	bhttp "github.com/shashiranjanraj/bookstore/pkg/http"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
)

// Client talks to one backend.
type Client struct {
	http *bhttp.Client
	jar  *Jar
}

// Option configures a Client.
type Option func(*options)

type options struct {
	jar       *Jar
	transport http.RoundTripper
}

// WithJar carries the backend session cookie through jar.
func WithJar(j *Jar) Option { return func(o *options) { o.jar = j } }

// WithTransport replaces the network transport. Tests use it.
func WithTransport(rt http.RoundTripper) Option { return func(o *options) { o.transport = rt } }

func New(baseURL string, opts ...Option) *Client {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var hopts []bhttp.Option
	if o.jar != nil {
		hopts = append(hopts, bhttp.WithJar(o.jar))
	}
	if o.transport != nil {
		hopts = append(hopts, bhttp.WithTransport(o.transport))
	}
	return &Client{http: bhttp.NewClient(baseURL, hopts...), jar: o.jar}
}

// HTTP exposes the underlying transport client for calls outside the API,
// such as reverse geocoding.
func (c *Client) HTTP() *bhttp.Client { return c.http }

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, cred Credentials) (models.User, error) {
	return c.userCall(ctx, c.http.Post("/auth/login").Body(cred))
}

// Register creates an account. The caller signs in separately.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, c.http.Post("/auth/register").Body(reg), nil)
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (models.User, error) {
	return c.userCall(ctx, c.http.Post("/auth/google").Body(map[string]string{"tokenId": credential}))
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.http.Post("/auth/logout"), nil)
}

// ResetCookies drops the backend session cookie locally.
func (c *Client) ResetCookies() {
	if c.jar != nil {
		c.jar.Reset()
	}
}

// userCall decodes {"user": {...}}, or a bare user object.
func (c *Client) userCall(ctx context.Context, req *bhttp.Request) (models.User, error) {
	var raw []byte
	if err := c.do(ctx, req, &raw); err != nil {
		return models.User{}, err
	}

	body := gjson.ParseBytes(raw)
	if u := body.Get("user"); u.IsObject() {
		body = u
	}

	var user models.User
	if err := decode([]byte(body.Raw), &user); err != nil || user.Email == "" {
		return models.User{}, &Error{Kind: KindServer, Status: http.StatusOK, err: fmt.Errorf("api: response carries no user")}
	}
	return user, nil
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (c *Client) Books(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := c.do(ctx, c.http.Get("/books"), &books)
	return books, err
}

func (c *Client) CreateBook(ctx context.Context, form BookForm) error {
	return c.do(ctx, bookBody(c.http.Post("/books"), form), nil)
}

func (c *Client) UpdateBook(ctx context.Context, id uint, form BookForm) error {
	return c.do(ctx, bookBody(c.http.Put("/books/"+itoa(id)), form), nil)
}

func (c *Client) DeleteBook(ctx context.Context, id uint) error {
	return c.do(ctx, c.http.Delete("/books/"+itoa(id)), nil)
}

func bookBody(req *bhttp.Request, form BookForm) *bhttp.Request {
	if form.Image == nil {
		return req.Body(form.fields())
	}
	return req.Multipart(bhttp.Form{
		Fields: form.fields(),
		Files: []bhttp.File{{
			Field:       "image",
			Name:        form.Image.Name,
			ContentType: form.Image.ContentType,
			Data:        form.Image.Data,
		}},
	})
}

// ── Addresses ─────────────────────────────────────────────────────────────────

func (c *Client) Addresses(ctx context.Context) ([]models.Address, error) {
	var list []models.Address
	err := c.do(ctx, c.http.Get("/addresses"), &list)
	return list, err
}

func (c *Client) CreateAddress(ctx context.Context, form AddressForm) (models.Address, error) {
	var addr models.Address
	err := c.do(ctx, c.http.Post("/addresses").Body(form), &addr)
	return addr, err
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	err := c.do(ctx, c.http.Get("/orders"), &list)
	return list, err
}

// CreateOrder places an unpaid order and returns it with its id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (models.Order, error) {
	var order models.Order
	if err := c.do(ctx, c.http.Post("/orders").Body(req), &order); err != nil {
		return models.Order{}, err
	}
	if order.ID == 0 {
		return models.Order{}, &Error{Kind: KindServer, Status: http.StatusOK, err: fmt.Errorf("api: order response carries no id")}
	}
	return order, nil
}

// Pay submits the payment record for an order. Always multipart.
func (c *Client) Pay(ctx context.Context, form PaymentForm) error {
	mf := bhttp.Form{Fields: map[string]string{
		"orderId":  itoa(form.OrderID),
		"provider": string(form.Provider),
		"note":     form.Note,
	}}
	if form.Proof != nil {
		mf.Files = append(mf.Files, bhttp.File{
			Field:       "proof",
			Name:        form.Proof.Name,
			ContentType: form.Proof.ContentType,
			Data:        form.Proof.Data,
		})
	}
	return c.do(ctx, c.http.Post("/orders/pay").Multipart(mf), nil)
}

// ── Admin ─────────────────────────────────────────────────────────────────────

func (c *Client) AdminOrders(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	err := c.do(ctx, c.http.Get("/admin/orders"), &list)
	return list, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, c.http.Put("/admin/orders/"+itoa(id)+"/status").Body(body), nil)
}

func (c *Client) AdminLogs(ctx context.Context) ([]models.AuditLog, error) {
	var list []models.AuditLog
	err := c.do(ctx, c.http.Get("/admin/logs"), &list)
	return list, err
}

// ── plumbing ──────────────────────────────────────────────────────────────────

// do sends req once. out may be nil, a *[]byte for the raw body, or any
// JSON target.
func (c *Client) do(ctx context.Context, req *bhttp.Request, out interface{}) error {
	resp, err := req.WithContext(ctx).Send()
	if err != nil {
		return networkError(err)
	}
	if !resp.OK() {
		apiErr := errorFromResponse(resp)
		logger.WithCtx(ctx).Debug("api: call rejected",
			"status", apiErr.Status, "kind", apiErr.Kind.String(), "code", apiErr.Code)
		return apiErr
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = resp.Raw
		return nil
	default:
		if err := decode(resp.Raw, dst); err != nil {
			return &Error{Kind: KindServer, Status: resp.StatusCode, err: err}
		}
		return nil
	}
}

func decode(raw []byte, dst interface{}) error {
	resp := bhttp.Response{Raw: raw}
	return resp.JSON(dst)
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
