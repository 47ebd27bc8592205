package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
)

func withUser(u *models.User) *http.Request {
	s := store.New(nil)
	if u != nil {
		s.SetSession(*u, "")
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	return req.WithContext(store.WithStore(req.Context(), s))
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func TestAdminGuard(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"anonymous", nil, http.StatusSeeOther},
		{"customer", &models.User{ID: "2", Role: models.RoleCustomer}, http.StatusSeeOther},
		{"admin", &models.User{ID: "1", Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Admin(ok).ServeHTTP(rec, withUser(tc.user))
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusSeeOther {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			}
		})
	}
}

func TestGuestRedirectsSignedIn(t *testing.T) {
	rec := httptest.NewRecorder()
	Guest(ok).ServeHTTP(rec, withUser(&models.User{Role: models.RoleAdmin}))
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	Guest(ok).ServeHTTP(rec, withUser(nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
