// Package store holds the per-visitor storefront state: cart contents, the
// signed-in user and accessibility preferences.
//
// A Store is created for each request from the State persisted in the
// visitor's session and written back before the response is sent (see
// Middleware). Stores are independent values; tests build them with New.
package store

import (
	"strings"
	"sync"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
)

// State is the persisted form of a Store.
type State struct {
	Cart          []models.CartItem    `json:"cart"`
	User          *models.User         `json:"user,omitempty"`
	Token         string               `json:"token,omitempty"`
	Accessibility models.Accessibility `json:"accessibility"`
	CheckoutToken string               `json:"checkoutToken,omitempty"`
}

// CartEvent is the payload of cart.* events.
type CartEvent struct {
	ProductID string
	Quantity  int
}

// Store is the session/cart state container.
type Store struct {
	mu     sync.Mutex
	state  State
	events *event.Bus
	dirty  bool
}

// New returns an empty store with default accessibility settings.
// events may be nil.
func New(events *event.Bus) *Store {
	return &Store{
		state:  State{Accessibility: models.DefaultAccessibility()},
		events: events,
	}
}

// Restore rebuilds a store from a persisted snapshot.
func Restore(state State, events *event.Bus) *Store {
	state.Accessibility = state.Accessibility.Normalize()
	state.Cart = append([]models.CartItem(nil), state.Cart...)
	return &Store{state: state, events: events}
}

// ── Cart ─────────────────────────────────────────────────────────────────────

// AddToCart increments the line for p.ID or appends a new line with quantity 1.
func (s *Store) AddToCart(p models.Product) {
	s.mu.Lock()
	qty := 1
	found := false
	for i := range s.state.Cart {
		if s.state.Cart[i].ID == p.ID {
			s.state.Cart[i].Quantity++
			qty = s.state.Cart[i].Quantity
			found = true
			break
		}
	}
	if !found {
		s.state.Cart = append(s.state.Cart, models.CartItem{Product: p, Quantity: 1})
	}
	s.dirty = true
	s.mu.Unlock()

	s.events.Fire(event.CartItemAdded, CartEvent{ProductID: p.ID, Quantity: qty})
}

// RemoveFromCart drops the line for productID. Unknown ids are ignored.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	kept := s.state.Cart[:0]
	removed := 0
	for _, item := range s.state.Cart {
		if item.ID == productID {
			removed = item.Quantity
			continue
		}
		kept = append(kept, item)
	}
	s.state.Cart = kept
	if removed > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	if removed > 0 {
		s.events.Fire(event.CartItemRemoved, CartEvent{ProductID: productID, Quantity: removed})
	}
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.state.Cart = nil
	s.dirty = true
	s.mu.Unlock()

	s.events.Fire(event.CartCleared, nil)
}

// Cart returns a copy of the cart lines in insertion order.
func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.state.Cart...)
}

// CartTotal is Σ price × quantity over the current lines.
func (s *Store) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.state.Cart {
		total += item.Subtotal()
	}
	return total
}

// CartCount is the number of units in the cart.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.state.Cart {
		n += item.Quantity
	}
	return n
}

// ── Checkout token ───────────────────────────────────────────────────────────

// IssueCheckoutToken records tok as the only token the next checkout may use.
func (s *Store) IssueCheckoutToken(tok string) {
	s.mu.Lock()
	s.state.CheckoutToken = tok
	s.dirty = true
	s.mu.Unlock()
}

// CheckoutToken returns the outstanding checkout token, if any.
func (s *Store) CheckoutToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CheckoutToken
}

// ConsumeCheckoutToken reports whether tok matches the outstanding token and,
// if so, invalidates it.
func (s *Store) ConsumeCheckoutToken(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok == "" || tok != s.state.CheckoutToken {
		return false
	}
	s.state.CheckoutToken = ""
	s.dirty = true
	return true
}

// ── Session ──────────────────────────────────────────────────────────────────

// LoginSimulated signs in without a backend. The role is derived from the
// username, so callers must only expose it in demo mode.
func (s *Store) LoginSimulated(username string) models.User {
	var u models.User
	if strings.ToLower(strings.TrimSpace(username)) == "admin" {
		u = models.User{ID: "1", Username: "Admin User", Role: models.RoleAdmin}
	} else {
		u = models.User{ID: "2", Username: username, Role: models.RoleCustomer}
	}
	s.SetSession(u, "")
	return u
}

// SetSession stores a verified identity and its bearer token.
func (s *Store) SetSession(u models.User, token string) {
	s.mu.Lock()
	s.state.User = &u
	s.state.Token = token
	s.dirty = true
	s.mu.Unlock()

	s.events.Fire(event.SessionLogin, u)
}

// SetToken replaces the bearer token; "" clears it.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.state.Token = token
	s.dirty = true
	s.mu.Unlock()
}

// Token returns the bearer token for backend calls.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns the signed-in user.
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

// Logout clears the identity and token. The cart is kept.
func (s *Store) Logout() {
	s.mu.Lock()
	u := s.state.User
	s.state.User = nil
	s.state.Token = ""
	s.dirty = true
	s.mu.Unlock()

	if u != nil {
		s.events.Fire(event.SessionLogout, *u)
	}
}

// ── Accessibility ────────────────────────────────────────────────────────────

func (s *Store) Accessibility() models.Accessibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Accessibility
}

// SetAccessibility replaces the preferences, clamping the font scale.
func (s *Store) SetAccessibility(a models.Accessibility) {
	s.updateAccessibility(func(cur *models.Accessibility) { *cur = a.Normalize() })
}

func (s *Store) ToggleAccessibility() {
	s.updateAccessibility(func(a *models.Accessibility) { a.HighContrast = !a.HighContrast })
}

func (s *Store) IncreaseFontSize() {
	s.updateAccessibility(func(a *models.Accessibility) {
		a.FontScale = min(a.FontScale+models.FontScaleStep, models.FontScaleMax)
	})
}

func (s *Store) DecreaseFontSize() {
	s.updateAccessibility(func(a *models.Accessibility) {
		a.FontScale = max(a.FontScale-models.FontScaleStep, models.FontScaleMin)
	})
}

func (s *Store) ResetFontSize() {
	s.updateAccessibility(func(a *models.Accessibility) { a.FontScale = models.FontScaleDefault })
}

func (s *Store) updateAccessibility(fn func(*models.Accessibility)) {
	s.mu.Lock()
	before := s.state.Accessibility
	fn(&s.state.Accessibility)
	after := s.state.Accessibility
	changed := before != after
	if changed {
		s.dirty = true
	}
	s.mu.Unlock()

	if changed {
		s.events.Fire(event.AccessibilityChanged, after)
	}
}

// ── Persistence ──────────────────────────────────────────────────────────────

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Cart = append([]models.CartItem(nil), s.state.Cart...)
	if s.state.User != nil {
		u := *s.state.User
		st.User = &u
	}
	return st
}

// Dirty reports whether the state changed since it was restored or saved.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkClean resets the dirty flag after a successful save.
func (s *Store) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}
