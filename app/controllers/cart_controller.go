package controllers

import (
	"errors"
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

const checkoutFailed = "Error al procesar el pedido"

type CartController struct {
	checkout *services.CheckoutService
}

func NewCartController(checkout *services.CheckoutService) *CartController {
	return &CartController{checkout: checkout}
}

// Show renders the cart, or the confirmation right after a placed order.
func (cc *CartController) Show(c *ctx.Context) {
	var confirmed models.Order
	if sess := c.Session(); sess != nil && sess.PopFlash("order", &confirmed) {
		cc.render(c, http.StatusOK, views.CartPage{Confirmed: &confirmed})
		return
	}
	cc.render(c, http.StatusOK, views.CartPage{})
}

func (cc *CartController) Remove(c *ctx.Context) {
	store.FromCtx(c.Context()).RemoveFromCart(c.Param("id"))
	c.SeeOther("/cart")
}

// Checkout places the order. Field errors and backend failures re-render the
// cart with the visitor's input kept.
func (cc *CartController) Checkout(c *ctx.Context) {
	var form views.CheckoutForm
	errs, err := c.BindForm(&form)
	if err != nil {
		bindFailed(c, err)
		return
	}
	if len(errs) > 0 {
		cc.render(c, http.StatusUnprocessableEntity, views.CartPage{Form: form, Errors: errs})
		return
	}

	st := store.FromCtx(c.Context())
	sessionID := ""
	if sess := c.Session(); sess != nil {
		sessionID = sess.ID()
	}

	order, err := cc.checkout.PlaceOrder(c.Context(), st, services.CheckoutRequest{
		SessionID:       sessionID,
		Token:           form.Token,
		CustomerName:    form.CustomerName,
		CustomerAddress: form.CustomerAddress,
	})
	switch {
	case err == nil:
		if sess := c.Session(); sess != nil {
			if ferr := sess.Flash("order", order); ferr != nil {
				logger.WithCtx(c.Context()).Warn("checkout: confirmation flash failed", "error", ferr)
			}
		}
		c.SeeOther("/cart")
	case errors.Is(err, services.ErrEmptyCart):
		c.SeeOther("/cart")
	case errors.Is(err, services.ErrCheckoutInProgress), errors.Is(err, services.ErrDuplicateSubmit):
		c.Flash(flashError, "Tu pedido ya se está procesando.")
		c.SeeOther("/cart")
	default:
		logger.WithCtx(c.Context()).Error("checkout failed", "error", err)
		cc.renderWithError(c, http.StatusBadGateway, views.CartPage{Form: form}, checkoutFailed)
	}
}

func (cc *CartController) render(c *ctx.Context, code int, page views.CartPage) {
	cc.renderWithError(c, code, page, "")
}

func (cc *CartController) renderWithError(c *ctx.Context, code int, page views.CartPage, msg string) {
	st := store.FromCtx(c.Context())
	page.Layout = layoutFor(c, "Carrito")
	if msg != "" {
		page.Error = msg
	}
	if page.Confirmed == nil {
		page.Items = st.Cart()
		page.Total = st.CartTotal()
		if len(page.Items) > 0 {
			page.Form.Token = cc.checkout.IssueToken(st)
		}
	}
	c.Render(code, views.Pages, "cart", page)
}
