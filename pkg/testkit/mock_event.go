package testkit

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
)

// ─── EventRecorder ────────────────────────────────────────────────────────────

// EventRecorder listens on an event bus and records every event it was told
// to watch through a testify mock, so tests can use the usual
// AssertCalled/AssertNumberOfCalls helpers:
//
//	rec := testkit.NewEventRecorder(bus, event.OrderPlaced)
//	// ... drive the app ...
//	rec.Mock().AssertNumberOfCalls(t, "Handle", 1)
type EventRecorder struct {
	m     mock.Mock
	mu    sync.Mutex
	count map[string]int
}

// NewEventRecorder subscribes to names on bus.
func NewEventRecorder(bus *event.Bus, names ...string) *EventRecorder {
	r := &EventRecorder{count: map[string]int{}}
	r.m.On("Handle", mock.AnythingOfType("string"), mock.Anything).Return()
	for _, name := range names {
		name := name
		bus.Listen(name, func(payload interface{}) { r.Handle(name, payload) })
	}
	return r
}

func (r *EventRecorder) Handle(name string, payload interface{}) {
	r.mu.Lock()
	r.count[name]++
	r.mu.Unlock()
	r.m.Called(name, payload)
}

// Count returns how many times name fired.
func (r *EventRecorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count[name]
}

// Mock exposes the underlying testify mock.
func (r *EventRecorder) Mock() *mock.Mock { return &r.m }

// Missing returns an error for every name that never fired.
func (r *EventRecorder) Missing(names ...string) []error {
	var errs []error
	for _, name := range names {
		if r.Count(name) == 0 {
			errs = append(errs, fmt.Errorf("testkit: event %q never fired", name))
		}
	}
	return errs
}
