package controllers

import (
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

type HomeController struct{}

func NewHomeController() *HomeController { return &HomeController{} }

func (h *HomeController) Index(c *ctx.Context) {
	c.Render(http.StatusOK, views.Pages, "home", views.HomePage{Layout: layoutFor(c, "")})
}

type MenuController struct {
	catalog *services.CatalogService
}

func NewMenuController(catalog *services.CatalogService) *MenuController {
	return &MenuController{catalog: catalog}
}

// Index lists the menu. A backend failure is logged and an empty grid shown.
func (m *MenuController) Index(c *ctx.Context) {
	products, category, err := m.catalog.ByCategory(c.Context(), c.Query("category"))
	if err != nil {
		logger.WithCtx(c.Context()).Error("menu: load products failed", "error", err)
	}
	c.Render(http.StatusOK, views.Pages, "menu", views.MenuPage{
		Layout:     layoutFor(c, "Menú"),
		Products:   products,
		Categories: models.Categories(),
		Category:   category,
	})
}

// Add puts a product in the cart and returns to the previous page.
func (m *MenuController) Add(c *ctx.Context) {
	id := c.PostForm("productId")
	p, err := m.catalog.Find(c.Context(), id)
	if err != nil {
		logger.WithCtx(c.Context()).Warn("cart: add failed", "product_id", id, "error", err)
		c.Flash(flashError, "No se pudo agregar el producto.")
		c.Back("/menu")
		return
	}
	store.FromCtx(c.Context()).AddToCart(p)
	c.Back("/menu")
}
