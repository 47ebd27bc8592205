package store

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/session"
)

var (
	burger = models.Product{ID: "a", Name: "Clásica", Price: 5.00, Category: models.CategoryBurger}
	soda   = models.Product{ID: "b", Name: "Cola", Price: 3.50, Category: models.CategoryDrink}
)

func TestAddToCartMergesLines(t *testing.T) {
	s := New(nil)
	s.AddToCart(burger)
	s.AddToCart(burger)
	s.AddToCart(soda)

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, "a", cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 1, cart[1].Quantity)
	assert.InDelta(t, 13.50, s.CartTotal(), 1e-9)
	assert.Equal(t, 3, s.CartCount())
}

func TestCartTotalMatchesLines(t *testing.T) {
	s := New(nil)
	products := []models.Product{burger, soda, burger, {ID: "c", Price: 2.25}, soda, burger}
	for i, p := range products {
		s.AddToCart(p)
		if i == 3 {
			s.RemoveFromCart("b")
		}

		var want float64
		seen := map[string]bool{}
		for _, item := range s.Cart() {
			assert.False(t, seen[item.ID], "duplicate line for %s", item.ID)
			seen[item.ID] = true
			want += item.Price * float64(item.Quantity)
		}
		assert.True(t, math.Abs(want-s.CartTotal()) < 1e-9)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	fired := 0
	bus := event.New()
	bus.Listen(event.CartItemRemoved, func(interface{}) { fired++ })

	s := New(bus)
	s.AddToCart(burger)
	s.MarkClean()
	s.RemoveFromCart("missing")

	assert.Len(t, s.Cart(), 1)
	assert.False(t, s.Dirty())
	assert.Zero(t, fired)

	s.RemoveFromCart("a")
	assert.Empty(t, s.Cart())
	assert.Equal(t, 1, fired)
}

func TestClearCart(t *testing.T) {
	s := New(nil)
	s.AddToCart(burger)
	s.ClearCart()
	assert.Empty(t, s.Cart())
	assert.Zero(t, s.CartTotal())
}

func TestFontScaleClamps(t *testing.T) {
	s := New(nil)
	for i := 0; i < 10; i++ {
		s.IncreaseFontSize()
	}
	assert.Equal(t, 150, s.Accessibility().FontScale)

	for i := 0; i < 20; i++ {
		s.DecreaseFontSize()
	}
	assert.Equal(t, 75, s.Accessibility().FontScale)

	s.ResetFontSize()
	assert.Equal(t, 100, s.Accessibility().FontScale)

	s.ToggleAccessibility()
	assert.True(t, s.Accessibility().HighContrast)
	s.ToggleAccessibility()
	assert.False(t, s.Accessibility().HighContrast)
}

func TestLoginSimulated(t *testing.T) {
	s := New(nil)
	u := s.LoginSimulated("admin")
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "Admin User", u.Username)

	u = s.LoginSimulated("bob")
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.Equal(t, "bob", u.Username)

	s.Logout()
	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestLogoutKeepsCart(t *testing.T) {
	s := New(nil)
	s.AddToCart(burger)
	s.SetSession(models.User{ID: "9", Username: "ana", Role: models.RoleCustomer}, "tok")
	assert.Equal(t, "tok", s.Token())

	s.Logout()
	assert.Len(t, s.Cart(), 1)
}

func TestCheckoutTokenIsOneShot(t *testing.T) {
	s := New(nil)
	s.IssueCheckoutToken("t1")
	assert.Equal(t, "t1", s.CheckoutToken())
	assert.False(t, s.ConsumeCheckoutToken(""))
	assert.False(t, s.ConsumeCheckoutToken("other"))
	assert.True(t, s.ConsumeCheckoutToken("t1"))
	assert.False(t, s.ConsumeCheckoutToken("t1"))
	assert.Empty(t, s.CheckoutToken())
}

func TestSnapshotRestore(t *testing.T) {
	s := New(nil)
	s.AddToCart(burger)
	s.IncreaseFontSize()
	s.SetSession(models.User{ID: "1", Username: "x", Role: models.RoleAdmin}, "jwt")

	r := Restore(s.Snapshot(), nil)
	assert.Equal(t, s.Cart(), r.Cart())
	assert.Equal(t, 110, r.Accessibility().FontScale)
	u, ok := r.User()
	require.True(t, ok)
	assert.True(t, u.IsAdmin())
	assert.False(t, r.Dirty())

	// restoring clamps out-of-range persisted values
	r = Restore(State{Accessibility: models.Accessibility{FontScale: 400}}, nil)
	assert.Equal(t, 150, r.Accessibility().FontScale)
}

func TestEventsFired(t *testing.T) {
	bus := event.New()
	var names []string
	for _, name := range []string{event.CartItemAdded, event.SessionLogin, event.SessionLogout, event.AccessibilityChanged} {
		name := name
		bus.Listen(name, func(interface{}) { names = append(names, name) })
	}

	s := New(bus)
	s.AddToCart(burger)
	s.LoginSimulated("bob")
	s.Logout()
	s.ResetFontSize() // unchanged, no event
	s.IncreaseFontSize()

	assert.Equal(t, []string{event.CartItemAdded, event.SessionLogin, event.SessionLogout, event.AccessibilityChanged}, names)
}

func TestMiddlewarePersistsAcrossRequests(t *testing.T) {
	backend := cache.NewMemory()
	seeded := 0
	seed := func(_ *http.Request, s *Store) {
		seeded++
		s.ToggleAccessibility()
	}

	h := session.Middleware(backend, session.DefaultOptions())(
		Middleware(nil, seed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := FromCtx(r.Context())
			if r.URL.Path == "/add" {
				s.AddToCart(burger)
			}
			w.WriteHeader(http.StatusNoContent)
		})),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/add", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var got *Store
	inspect := session.Middleware(backend, session.DefaultOptions())(
		Middleware(nil, seed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromCtx(r.Context())
		})),
	)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	inspect.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, 1, got.CartCount())
	assert.True(t, got.Accessibility().HighContrast)
	assert.Equal(t, 1, seeded, "seed runs only for a fresh session")
}

func TestFromCtxWithoutMiddleware(t *testing.T) {
	s := FromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NotNil(t, s)
	assert.Empty(t, s.Cart())
}
