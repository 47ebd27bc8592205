package services

import (
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
)

// RegisterListeners subscribes metrics and logging to storefront events.
func RegisterListeners(bus *event.Bus) {
	bus.Listen(event.CartItemAdded, func(p interface{}) {
		metrics.CartEvents.WithLabelValues("added").Inc()
		if e, ok := p.(store.CartEvent); ok {
			logger.Debug("cart item added", "product_id", e.ProductID, "quantity", e.Quantity)
		}
	})
	bus.Listen(event.CartItemRemoved, func(interface{}) {
		metrics.CartEvents.WithLabelValues("removed").Inc()
	})
	bus.Listen(event.CartCleared, func(interface{}) {
		metrics.CartEvents.WithLabelValues("cleared").Inc()
	})

	bus.Listen(event.SessionLogin, func(p interface{}) {
		u, _ := p.(models.User)
		metrics.Logins.WithLabelValues(string(u.Role), "success").Inc()
		logger.Info("user signed in", "user_id", u.ID, "role", string(u.Role))
	})
	bus.Listen(event.SessionLogout, func(p interface{}) {
		u, _ := p.(models.User)
		logger.Info("user signed out", "user_id", u.ID)
	})

	bus.Listen(event.OrderPlaced, func(p interface{}) {
		metrics.OrdersPlaced.WithLabelValues("placed").Inc()
		if o, ok := p.(models.Order); ok {
			metrics.OrderValue.Observe(o.Total)
		}
	})
	bus.Listen(event.OrderFailed, func(p interface{}) {
		metrics.OrdersPlaced.WithLabelValues("failed").Inc()
		if f, ok := p.(OrderFailure); ok {
			logger.Warn("order failed", "total", f.Total, "error", f.Err)
		}
	})

	bus.Listen(event.AccessibilityChanged, func(p interface{}) {
		if a, ok := p.(models.Accessibility); ok {
			logger.Debug("accessibility changed", "high_contrast", a.HighContrast, "font_scale", a.FontScale)
		}
	})
}
