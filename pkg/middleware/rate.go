// Package middleware provides HTTP middleware for the FastBite server.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter limits each client IP to max requests per window.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

// Allow records one request from key and reports whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.max
}

// sweep evicts expired buckets at most once per window.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, k)
		}
	}
	l.nextSweep = now.Add(l.window)
}

// Middleware answers 429 once a client exceeds the limit. max <= 0 disables it.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.max > 0 && !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Demasiados intentos. Inténtalo más tarde.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit returns a middleware with its own limiter.
// Example: middleware.RateLimit(10, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return NewRateLimiter(max, window).Middleware
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr without port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
