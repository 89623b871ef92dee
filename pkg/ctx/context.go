// Package ctx provides the request context for storefront handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for the visitor's App, binding and
// the JSON envelope:
//
//	func AddToCart(c *ctx.Context) {
//	    var in struct {
//	        BookID uint `json:"bookId" validate:"required"`
//	    }
//	    if !c.BindJSON(&in) {
//	        return
//	    }
//	    notice, err := c.App().Catalog.AddToCartByID(c.Context(), in.BookID)
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Notice(notice, c.App().Cart.Lines())
//	}
//
//	router.Post("/api/cart/items", "cart.add", ctx.Wrap(AddToCart))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return new(Context) },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/books/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamID parses a numeric path parameter. It answers 404 and returns false
// when the parameter is not a positive integer.
func (c *Context) ParamID(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.NotFound()
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// App returns the visitor's client. It panics outside visitor.Middleware.
func (c *Context) App() *app.App {
	a := visitor.App(c.R.Context())
	if a == nil {
		panic("ctx: no visitor app on request; is visitor.Middleware mounted?")
	}
	return a
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422, on a malformed body a 400, and
// returns false. Returns true only when dest is ready to use.
func (c *Context) BindJSON(dest any) bool {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxBodyBytes())

	if err := json.NewDecoder(c.R.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit))
			return false
		}
		c.Error(http.StatusBadRequest, "Invalid JSON body")
		return false
	}

	if err := validate.Check(dest); err != nil {
		var verrs validate.Errors
		errors.As(err, &verrs)
		c.ValidationError(verrs)
		return false
	}
	return true
}

// ParseMultipart reads a multipart/form-data body, holding up to the body
// limit in memory. It answers 400 and returns false on failure.
func (c *Context) ParseMultipart() bool {
	limit := maxBodyBytes()
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, limit+attachment.MaxSize)
	if err := c.R.ParseMultipartForm(limit); err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart body")
		return false
	}
	return true
}

// FormValue returns a field of the parsed form.
func (c *Context) FormValue(key string) string {
	return strings.TrimSpace(c.R.FormValue(key))
}

// FormFile loads an uploaded file. It returns nil, nil when field is absent.
func (c *Context) FormFile(field string) (*attachment.File, error) {
	f, hdr, err := c.R.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := attachment.FromReader(hdr.Filename, f)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Notice sends a 200 envelope carrying a message for the visitor.
func (c *Context) Notice(message string, data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Message: message, Data: data})
}

// Created sends a 201 JSON envelope.
func (c *Context) Created(message string, data any) {
	c.JSON(http.StatusCreated, envelope{Status: http.StatusCreated, Message: message, Data: data})
}

// Error sends a JSON error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.JSON(code, envelope{Status: code, Message: message})
}

// ValidationError sends a 422 with field-level errors. The message is the
// joined field messages, as the pages display it.
func (c *Context) ValidationError(errs validate.Errors) {
	c.JSON(http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: errs.Error(),
		Errors:  errs.Map(),
	})
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// Fail answers for an error from a page service: the status follows the
// error's kind, the message is the one the visitor is shown.
func (c *Context) Fail(err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Warn("storefront: request failed", "path", c.R.URL.Path, "error", err)
	}

	var verrs validate.Errors
	if errors.As(err, &verrs) {
		c.ValidationError(verrs)
		return
	}

	body := envelope{Status: code, Message: services.Message(err)}
	if orderID, partial := services.IsPartial(err); partial {
		body.Data = map[string]uint{"orderId": orderID}
	}
	c.JSON(code, body)
}

// StatusOf maps a page-service error to an HTTP status.
func StatusOf(err error) int {
	if code := guard.Status(err); code != http.StatusOK {
		return code
	}

	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case api.KindNetwork:
			return http.StatusBadGateway
		case api.KindValidation:
			return http.StatusUnprocessableEntity
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}

	var f *services.Failure
	if errors.As(err, &f) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }

// ─── JSON envelope (mirrors pkg/response) ────────────────────────────────────

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}
