package store

import (
	"context"
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/session"
)

// SessionKey is the session entry holding the persisted State.
const SessionKey = "store"

type ctxKey struct{}

// Seeder initialises a fresh store, e.g. with saved preferences. It runs only
// when the session carries no store state yet.
type Seeder func(r *http.Request, s *Store)

// Middleware restores the visitor's Store from the session and writes it back
// just before the response headers go out. It must run inside
// session.Middleware.
func Middleware(events *event.Bus, seed Seeder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromCtx(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), New(events))))
				return
			}

			var st State
			ok, err := sess.Decode(SessionKey, &st)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("store: discarding unreadable session state", "error", err)
				ok = false
			}

			var s *Store
			if ok {
				s = Restore(st, events)
			} else {
				s = New(events)
				if seed != nil {
					seed(r, s)
				}
				s.dirty = true
			}

			ctx := WithStore(r.Context(), s)
			sw := session.NewSaveWriter(w, func(http.ResponseWriter) {
				if !s.Dirty() {
					return
				}
				if err := sess.Set(SessionKey, s.Snapshot()); err != nil {
					logger.WithCtx(ctx).Error("store: persist failed", "error", err)
					return
				}
				s.MarkClean()
			})
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.Flush()
		})
	}
}

// WithStore returns a copy of ctx carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromCtx returns the request's Store. Without the middleware it returns a
// fresh, unpersisted store so handlers never see nil.
func FromCtx(ctx context.Context) *Store {
	if s, ok := ctx.Value(ctxKey{}).(*Store); ok {
		return s
	}
	return New(nil)
}
