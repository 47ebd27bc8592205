// Package session provides cookie-bound server-side sessions stored in a
// cache.Cache (Redis or memory).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(backend, session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r.Context())
//	sess.Set("cart", cart)
//	var cart Cart
//	ok, _ := sess.Decode("cart", &cart)
//
// Changed sessions are saved, and the cookie written, when the handler first
// writes response headers.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// ------------------- Options -------------------

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		CookieName: "fastbite_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ------------------- Session -------------------

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	id      string
	data    map[string]json.RawMessage
	opts    Options
	backend cache.Cache
	changed bool
	isNew   bool
}

func newID() string { return uuid.NewString() }

func storageKey(id string) string { return "fastbite:session:" + id }

// Set stores value (JSON-encoded) under key.
func (s *Session) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", key, err)
	}
	s.data[key] = raw
	s.changed = true
	return nil
}

// Decode unmarshals the value under key into dest and reports whether it existed.
func (s *Session) Decode(key string, dest interface{}) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("session: decode %s: %w", key, err)
	}
	return true, nil
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	var v string
	ok, err := s.Decode(key, &v)
	return v, ok && err == nil
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.changed = true
	}
}

// Flash stores a value that is removed by the next GetFlash.
func (s *Session) Flash(key string, value interface{}) error {
	return s.Set("_flash_"+key, value)
}

// GetFlash retrieves and removes a flash string.
func (s *Session) GetFlash(key string) (string, bool) {
	v, ok := s.GetString("_flash_" + key)
	if ok {
		s.Delete("_flash_" + key)
	}
	return v, ok
}

// PopFlash decodes and removes a flash value of any type.
func (s *Session) PopFlash(key string, dest interface{}) bool {
	ok, err := s.Decode("_flash_"+key, dest)
	if ok {
		s.Delete("_flash_" + key)
	}
	return ok && err == nil
}

// Invalidate clears all data and rotates the id. The old record is removed
// on the next Save.
func (s *Session) Invalidate(ctx context.Context) {
	if s.backend != nil && !s.isNew {
		if err := s.backend.Del(ctx, storageKey(s.id)); err != nil {
			logger.WithCtx(ctx).Warn("session: delete on invalidate failed", "error", err)
		}
	}
	s.id = newID()
	s.data = map[string]json.RawMessage{}
	s.changed = true
	s.isNew = true
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool { return s.isNew }

// Changed reports whether there are unsaved writes.
func (s *Session) Changed() bool { return s.changed }

// Save persists the session and writes the cookie to the response.
// It is a no-op when nothing changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if err := s.backend.Set(ctx, storageKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	s.isNew = false
	return nil
}

// ------------------- Middleware -------------------

// Middleware loads (or creates) the session for every request and injects it
// into the request context. A changed session is saved just before the
// response headers are written, or when the handler returns.
func Middleware(backend cache.Cache, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := load(r, backend, opts)

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			r = r.WithContext(ctx)

			sw := NewSaveWriter(w, func(w http.ResponseWriter) {
				if err := sess.Save(ctx, w); err != nil {
					logger.WithCtx(ctx).Error("session save failed", "error", err)
				}
			})
			next.ServeHTTP(sw, r)
			sw.Flush()
		})
	}
}

func load(r *http.Request, backend cache.Cache, opts Options) *Session {
	sess := &Session{opts: opts, backend: backend, data: map[string]json.RawMessage{}}

	if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
		var data map[string]json.RawMessage
		if err := backend.Get(r.Context(), storageKey(cookie.Value), &data); err == nil {
			sess.id = cookie.Value
			if data != nil {
				sess.data = data
			}
			return sess
		}
	}

	// Unknown or expired cookie: start fresh with a new id so a client can
	// never choose its own session id.
	sess.id = newID()
	sess.isNew = true
	return sess
}

// FromCtx retrieves the session from ctx. Returns nil when the middleware
// did not run.
func FromCtx(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewMemorySession returns a detached session for tests and CLI use.
func NewMemorySession(backend cache.Cache) *Session {
	return &Session{
		id:      newID(),
		data:    map[string]json.RawMessage{},
		opts:    DefaultOptions(),
		backend: backend,
		isNew:   true,
	}
}
