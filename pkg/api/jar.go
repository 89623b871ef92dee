package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/shashiranjanraj/bookstore/pkg/crypt"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

// Jar is the cookie jar for the backend session. Cookies the API sets are
// mirrored, sealed, to the "cookies" key so a later process resumes the same
// server session. Only cookies for the API origin are persisted.
type Jar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	origin *url.URL
	saved  map[string]*http.Cookie

	store  storage.Store
	sealer *crypt.Sealer
}

type savedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// NewJar restores any sealed cookies for baseURL from store. secret keys the
// seal; an unreadable or foreign value is dropped.
func NewJar(store storage.Store, baseURL, secret string) (*Jar, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	sealer, err := crypt.NewSealer(secret, storage.KeyCookies)
	if err != nil {
		return nil, err
	}

	j := &Jar{origin: origin, store: store, sealer: sealer}
	j.reset()
	j.restore()
	return j, nil
}

func (j *Jar) reset() {
	j.inner, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	j.saved = map[string]*http.Cookie{}
}

func (j *Jar) restore() {
	raw, err := j.store.Get(storage.KeyCookies)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Warn("api: cookie restore failed", "error", err)
		return
	}

	plain, err := j.sealer.Open(string(raw))
	var list []savedCookie
	if err == nil {
		err = json.Unmarshal(plain, &list)
	}
	if err != nil {
		logger.Warn("api: discarding unreadable cookies", "error", err)
		_ = j.store.Remove(storage.KeyCookies)
		return
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(list))
	for _, sc := range list {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		c := &http.Cookie{
			Name: sc.Name, Value: sc.Value, Path: sc.Path, Domain: sc.Domain,
			Expires: sc.Expires, Secure: sc.Secure, HttpOnly: sc.HttpOnly,
		}
		j.saved[c.Name] = c
		cookies = append(cookies, c)
	}
	j.inner.SetCookies(j.origin, cookies)
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		return
	}

	now := time.Now()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.saved, c.Name)
			continue
		}
		cp := *c
		if c.MaxAge > 0 {
			cp.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.saved[c.Name] = &cp
	}
	j.persist()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Reset forgets every cookie and deletes the persisted copy.
func (j *Jar) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.reset()
	if err := j.store.Remove(storage.KeyCookies); err != nil {
		logger.Warn("api: cookie remove failed", "error", err)
	}
}

// persist writes the saved set. Caller holds mu.
func (j *Jar) persist() {
	if len(j.saved) == 0 {
		if err := j.store.Remove(storage.KeyCookies); err != nil {
			logger.Warn("api: cookie remove failed", "error", err)
		}
		return
	}

	list := make([]savedCookie, 0, len(j.saved))
	for _, c := range j.saved {
		list = append(list, savedCookie{
			Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain,
			Expires: c.Expires, Secure: c.Secure, HttpOnly: c.HttpOnly,
		})
	}

	plain, err := json.Marshal(list)
	if err != nil {
		logger.Warn("api: cookie encode failed", "error", err)
		return
	}
	sealed, err := j.sealer.Seal(plain)
	if err == nil {
		err = j.store.Set(storage.KeyCookies, []byte(sealed))
	}
	if err != nil {
		logger.Warn("api: cookie persist failed", "error", err)
	}
}
