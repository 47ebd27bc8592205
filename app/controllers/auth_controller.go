package controllers

import (
	"errors"
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/auth"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/rbac"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (a *AuthController) Show(c *ctx.Context) {
	a.render(c, http.StatusOK, views.LoginPage{})
}

// Login signs the visitor in and sends admins to /admin, everyone else to /menu.
func (a *AuthController) Login(c *ctx.Context) {
	var form views.LoginForm
	errs, err := c.BindForm(&form)
	if err != nil {
		bindFailed(c, err)
		return
	}
	if len(errs) > 0 {
		a.render(c, http.StatusUnprocessableEntity, views.LoginPage{Form: form, Errors: errs})
		return
	}

	st := store.FromCtx(c.Context())
	var u models.User
	if a.service.DemoMode() {
		u, err = a.service.LoginDemo(st, form.Email)
	} else {
		u, err = a.service.Login(c.Context(), st, models.Credentials{Email: form.Email, Password: form.Password})
	}
	if err != nil {
		msg := userMessage(err, "Error al iniciar sesión")
		if errors.Is(err, auth.ErrUnverifiedToken) || errors.Is(err, auth.ErrNoSecret) {
			msg = "No se pudo verificar la sesión. Inténtalo de nuevo."
		}
		page := views.LoginPage{Form: views.LoginForm{Email: form.Email}}
		a.renderWithError(c, http.StatusUnauthorized, page, msg)
		return
	}

	// new identity, new session id; the store is re-saved under it
	if sess := c.Session(); sess != nil {
		sess.Invalidate(c.Context())
	}
	c.SeeOther(rbac.LandingPath(u))
}

func (a *AuthController) Logout(c *ctx.Context) {
	a.service.Logout(store.FromCtx(c.Context()))
	c.SeeOther("/")
}

func (a *AuthController) render(c *ctx.Context, code int, page views.LoginPage) {
	a.renderWithError(c, code, page, "")
}

func (a *AuthController) renderWithError(c *ctx.Context, code int, page views.LoginPage, msg string) {
	page.Layout = layoutFor(c, "Iniciar sesión")
	if msg != "" {
		page.Error = msg
	}
	page.DemoMode = a.service.DemoMode()
	c.Render(code, views.Pages, "login", page)
}
