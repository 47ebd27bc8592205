package controllers

import (
	"errors"
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/bind"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
)

// Flash keys shared by the controllers and the layout.
const (
	flashNotice = "notice"
	flashError  = "error"
)

// layoutFor builds the shell data from the visitor's store and pending flashes.
func layoutFor(c *ctx.Context, title string) views.Layout {
	st := store.FromCtx(c.Context())
	l := views.Layout{
		AppName:       config.AppName(),
		Title:         title,
		Path:          c.Path(),
		CartCount:     st.CartCount(),
		Accessibility: st.Accessibility(),
		Notice:        c.TakeFlash(flashNotice),
		Error:         c.TakeFlash(flashError),
	}
	if u, ok := st.User(); ok {
		l.User = &u
	}
	return l
}

// userMessage is the text shown for a failed backend call: the backend's own
// message when it sent one, otherwise fallback.
func userMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// bindFailed writes the response for a body that could not be read.
func bindFailed(c *ctx.Context, err error) {
	if errors.Is(err, bind.ErrTooLarge) {
		c.String(http.StatusRequestEntityTooLarge, "El contenido enviado es demasiado grande.")
		return
	}
	c.String(http.StatusBadRequest, "Solicitud inválida.")
}

// NotFound renders the 404 page.
func NotFound(c *ctx.Context) {
	c.Render(http.StatusNotFound, views.Pages, "not_found", views.HomePage{Layout: layoutFor(c, "No encontrado")})
}
