// Package rbac provides role-based access control middleware for the
// storefront. The role is read from the signed-in user held by the visitor's
// store, which only ever carries roles derived from verified token claims.
package rbac

import (
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// LoginPath is where unauthorised visitors are sent.
var LoginPath = "/login"

// HasRole returns middleware that allows access only to users with one of the
// given roles. Anyone else is redirected to the login page.
// Requires store.Middleware to have already run.
func HasRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := store.FromCtx(r.Context()).User()
			if !ok || !allowed[u.Role] {
				logger.WithCtx(r.Context()).Info("access denied", "path", r.URL.Path, "role", string(u.Role))
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is HasRole(models.RoleAdmin).
func Admin(next http.Handler) http.Handler {
	return HasRole(models.RoleAdmin)(next)
}

// Guest sends already signed-in visitors to their landing page
// (admins to /admin, customers to /menu).
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := store.FromCtx(r.Context()).User(); ok && r.Method == http.MethodGet {
			http.Redirect(w, r, LandingPath(u), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LandingPath is the page a user is sent to after signing in.
func LandingPath(u models.User) string {
	if u.IsAdmin() {
		return "/admin"
	}
	return "/menu"
}
