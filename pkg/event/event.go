// Package event provides a small in-process publish/subscribe bus.
//
// Storefront state changes (cart edits, logins, placed orders) are published
// here; metrics and logging subscribe to them.
package event

import (
	"sync"
)

// Well-known event names.
const (
	CartItemAdded        = "cart.item_added"
	CartItemRemoved      = "cart.item_removed"
	CartCleared          = "cart.cleared"
	SessionLogin         = "session.login"
	SessionLogout        = "session.logout"
	AccessibilityChanged = "accessibility.changed"
	OrderPlaced          = "order.placed"
	OrderFailed          = "order.failed"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus is a registry of handlers keyed by event name. The zero value is not
// usable; create one with New. A nil *Bus silently drops events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		h(payload)
	}
}

func (b *Bus) snapshot(event string) []Handler {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}
