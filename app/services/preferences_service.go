package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// VisitorCookie identifies a browser across sessions.
const VisitorCookie = "fastbite_visitor"

const visitorMaxAge = 365 * 24 * time.Hour

type visitorKey struct{}

// PreferenceStore is implemented by repositories.PreferenceRepository.
type PreferenceStore interface {
	Find(ctx context.Context, visitorID string) (models.Accessibility, bool, error)
	Save(ctx context.Context, visitorID string, a models.Accessibility) error
}

// PreferencesService persists accessibility settings per visitor so they
// outlive the session. With a nil store it only tracks the visitor cookie.
type PreferencesService struct {
	prefs  PreferenceStore
	secure bool
}

func NewPreferencesService(prefs PreferenceStore, secureCookie bool) *PreferencesService {
	return &PreferencesService{prefs: prefs, secure: secureCookie}
}

// Middleware ensures every visitor carries the long-lived visitor cookie.
func (s *PreferencesService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(VisitorCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(visitorMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorKey{}, id)))
	})
}

// VisitorID returns the id set by Middleware, or "".
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}

// Seed loads saved preferences into a fresh store. It is a store.Seeder.
func (s *PreferencesService) Seed(r *http.Request, st *store.Store) {
	id := VisitorID(r.Context())
	if s.prefs == nil || id == "" {
		return
	}
	a, ok, err := s.prefs.Find(r.Context(), id)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("preferences load failed", "visitor", id, "error", err)
		return
	}
	if ok {
		st.SetAccessibility(a)
	}
}

// Save writes the store's current preferences for the request's visitor.
func (s *PreferencesService) Save(ctx context.Context, st *store.Store) {
	id := VisitorID(ctx)
	if s.prefs == nil || id == "" {
		return
	}
	if err := s.prefs.Save(ctx, id, st.Accessibility()); err != nil {
		logger.WithCtx(ctx).Warn("preferences save failed", "visitor", id, "error", err)
	}
}
