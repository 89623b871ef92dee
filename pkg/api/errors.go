package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	bhttp "github.com/shashiranjanraj/bookstore/pkg/http"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork: no HTTP response arrived.
	KindNetwork Kind = iota
	// KindValidation: the server rejected the input (400/422 or field errors).
	KindValidation
	// KindServer: any other non-2xx answer.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	default:
		return "server"
	}
}

// Error is the normalized failure of one API call.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Fields  []string

	err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("api: %v", e.err)
	case e.Message != "":
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	case len(e.Fields) > 0:
		return fmt.Sprintf("api: %d: %s", e.Status, strings.Join(e.Fields, ", "))
	default:
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error { return e.err }

// networkError wraps a transport failure.
func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, err: err}
}

// errorFromResponse builds an Error from a non-2xx response. The body shape
// is not fixed: message/error for the summary, code/state for the machine
// code, and errors as either a list ({message} objects or strings) or a
// field→message object.
func errorFromResponse(resp *bhttp.Response) *Error {
	e := &Error{Kind: KindServer, Status: resp.StatusCode}

	if !gjson.ValidBytes(resp.Raw) {
		return classify(e)
	}
	body := gjson.ParseBytes(resp.Raw)

	for _, key := range []string{"message", "error"} {
		if v := body.Get(key); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			e.Message = v.String()
			break
		}
	}
	for _, key := range []string{"code", "state"} {
		if v := body.Get(key); v.Exists() && v.Type != gjson.Null {
			e.Code = v.String()
			break
		}
	}

	errs := body.Get("errors")
	switch {
	case errs.IsArray():
		errs.ForEach(func(_, v gjson.Result) bool {
			if msg := itemMessage(v); msg != "" {
				e.Fields = append(e.Fields, msg)
			}
			return true
		})
	case errs.IsObject():
		keys := make([]string, 0)
		msgs := map[string]string{}
		errs.ForEach(func(k, v gjson.Result) bool {
			if msg := itemMessage(v); msg != "" {
				keys = append(keys, k.String())
				msgs[k.String()] = msg
			}
			return true
		})
		sort.Strings(keys)
		for _, k := range keys {
			e.Fields = append(e.Fields, msgs[k])
		}
	}

	return classify(e)
}

func itemMessage(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return v.String()
	case v.IsObject():
		return v.Get("message").String()
	case v.IsArray():
		return v.Get("0").String()
	}
	return ""
}

func classify(e *Error) *Error {
	if len(e.Fields) > 0 || e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity {
		e.Kind = KindValidation
	}
	return e
}

// Display picks the one string shown to the user for err: the server's
// message, else its field messages joined with ", ", else fallback.
func Display(err error, fallback string) string {
	var e *Error
	if !errors.As(err, &e) {
		return fallback
	}
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return strings.Join(e.Fields, ", ")
	}
	return fallback
}

// IsUnauthorized reports whether the server refused the caller's session.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}
