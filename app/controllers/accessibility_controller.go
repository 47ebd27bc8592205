package controllers

import (
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
)

// AccessibilityController applies the nav popup's display controls.
type AccessibilityController struct {
	prefs *services.PreferencesService
}

func NewAccessibilityController(prefs *services.PreferencesService) *AccessibilityController {
	return &AccessibilityController{prefs: prefs}
}

func (a *AccessibilityController) Contrast(c *ctx.Context) {
	a.apply(c, (*store.Store).ToggleAccessibility)
}

func (a *AccessibilityController) Increase(c *ctx.Context) {
	a.apply(c, (*store.Store).IncreaseFontSize)
}

func (a *AccessibilityController) Decrease(c *ctx.Context) {
	a.apply(c, (*store.Store).DecreaseFontSize)
}

func (a *AccessibilityController) Reset(c *ctx.Context) {
	a.apply(c, (*store.Store).ResetFontSize)
}

func (a *AccessibilityController) apply(c *ctx.Context, fn func(*store.Store)) {
	st := store.FromCtx(c.Context())
	fn(st)
	a.prefs.Save(c.Context(), st)
	c.Back("/")
}
