// Package middleware provides the storefront's HTTP middleware.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/bookstore/pkg/response"
)

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per client IP.
type Limiter struct {
	mu      sync.Mutex
	perSec  rate.Limit
	burst   int
	proxies Proxies
	clients map[string]*visitorLimiter
}

// NewLimiter allows perMinute requests per IP with bursts of up to burst.
// Requests arriving through one of proxies are keyed on the forwarded
// client address.
func NewLimiter(perMinute, burst int, proxies Proxies) *Limiter {
	return &Limiter{
		perSec:  rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		proxies: proxies,
		clients: map[string]*visitorLimiter{},
	}
}

// Allow reports whether ip may make another request now.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.clients[ip]
	if !ok {
		v = &visitorLimiter{limiter: rate.NewLimiter(l.perSec, l.burst)}
		l.clients[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Sweep drops clients idle for longer than idle.
func (l *Limiter) Sweep(idle time.Duration) {
	cutoff := time.Now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.clients {
		if v.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429.
//
//	lim := middleware.NewLimiter(120, 20, nil)
//	r.Use(middleware.RateLimit(lim))
func RateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(l.proxies.ClientIP(r)) {
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
