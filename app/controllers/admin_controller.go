package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

const (
	tabDashboard = "dashboard"
	tabProducts  = "products"
	tabOrders    = "orders"
)

// AdminController serves the back-office. Routes are guarded by rbac.Admin.
type AdminController struct {
	api     client.Backend
	catalog *services.CatalogService
	images  *services.ImageService
}

func NewAdminController(api client.Backend, catalog *services.CatalogService, images *services.ImageService) *AdminController {
	return &AdminController{api: api, catalog: catalog, images: images}
}

func (a *AdminController) backend(c *ctx.Context) client.Backend {
	return a.api.WithToken(store.FromCtx(c.Context()).Token())
}

// Index renders the tab named by ?tab= (dashboard by default).
func (a *AdminController) Index(c *ctx.Context) {
	page := views.AdminPage{Tab: c.DefaultQuery("tab", tabDashboard)}
	if page.Tab == tabProducts && c.Query("new") != "" {
		page.Editing = true
		page.Form = views.ProductForm{Category: string(models.CategoryBurger)}
	}
	a.render(c, http.StatusOK, page)
}

func (a *AdminController) Edit(c *ctx.Context) {
	p, err := a.findProduct(c.Context(), c.Param("id"))
	if err != nil {
		a.productNotFound(c, err)
		return
	}
	a.render(c, http.StatusOK, views.AdminPage{Tab: tabProducts, Editing: true, Form: views.ProductFormFrom(p)})
}

// SaveProduct creates or updates a product. An uploaded file replaces the
// image URL field.
func (a *AdminController) SaveProduct(c *ctx.Context) {
	var form views.ProductForm
	errs, err := c.BindForm(&form)
	if err != nil {
		bindFailed(c, err)
		return
	}

	if len(errs) == 0 {
		if fh, ferr := formFile(c.R, "imageFile"); ferr == nil {
			url, uerr := a.images.Upload(c.Context(), fh)
			switch {
			case errors.Is(uerr, services.ErrNotImage):
				errs["imageFile"] = "Solo se aceptan archivos de imagen."
			case errors.Is(uerr, services.ErrImageTooLarge):
				errs["imageFile"] = "La imagen es demasiado grande."
			case uerr != nil:
				logger.WithCtx(c.Context()).Error("admin: image upload failed", "error", uerr)
				errs["imageFile"] = "No se pudo subir la imagen."
			default:
				form.Image = url
			}
		}
	}

	if len(errs) > 0 {
		a.render(c, http.StatusUnprocessableEntity, views.AdminPage{Tab: tabProducts, Editing: true, Form: form, Errors: errs})
		return
	}

	fallback := "Failed to create product"
	if form.ID != "" {
		fallback = "Failed to update product"
	}
	if _, err := a.catalog.SaveProduct(c.Context(), store.FromCtx(c.Context()).Token(), form.Product()); err != nil {
		logger.WithCtx(c.Context()).Error("admin: save product failed", "product_id", form.ID, "error", err)
		page := views.AdminPage{Tab: tabProducts, Editing: true, Form: form}
		a.renderWithError(c, http.StatusBadGateway, page, userMessage(err, fallback))
		return
	}

	c.Flash(flashNotice, "Producto guardado.")
	c.SeeOther("/admin?tab=products")
}

// ConfirmDelete asks before deleting.
func (a *AdminController) ConfirmDelete(c *ctx.Context) {
	p, err := a.findProduct(c.Context(), c.Param("id"))
	if err != nil {
		a.productNotFound(c, err)
		return
	}
	c.Render(http.StatusOK, views.Pages, "confirm_delete", views.ConfirmDeletePage{
		Layout:  layoutFor(c, "Eliminar producto"),
		Product: p,
	})
}

func (a *AdminController) DeleteProduct(c *ctx.Context) {
	id := c.Param("id")
	if err := a.catalog.DeleteProduct(c.Context(), store.FromCtx(c.Context()).Token(), id); err != nil {
		logger.WithCtx(c.Context()).Error("admin: delete product failed", "product_id", id, "error", err)
		c.Flash(flashError, userMessage(err, "Failed to delete product"))
	} else {
		c.Flash(flashNotice, "Producto eliminado.")
	}
	c.SeeOther("/admin?tab=products")
}

func (a *AdminController) UpdateStatus(c *ctx.Context) {
	id := c.Param("id")
	status, ok := models.ParseOrderStatus(c.PostForm("status"))
	if !ok {
		c.Flash(flashError, "Estado de pedido no válido.")
		c.SeeOther("/admin?tab=orders")
		return
	}
	if err := a.backend(c).UpdateOrderStatus(c.Context(), id, status); err != nil {
		logger.WithCtx(c.Context()).Error("admin: update order status failed", "order_id", id, "error", err)
		c.Flash(flashError, userMessage(err, "Failed to update order status"))
	}
	c.SeeOther("/admin?tab=orders")
}

// findProduct reads the backend directly so the edit form never shows a
// cached copy.
func (a *AdminController) findProduct(ctx context.Context, id string) (models.Product, error) {
	a.catalog.Invalidate(ctx)
	return a.catalog.Find(ctx, id)
}

func (a *AdminController) productNotFound(c *ctx.Context, err error) {
	if errors.Is(err, services.ErrProductNotFound) {
		c.Flash(flashError, "Producto no encontrado.")
	} else {
		logger.WithCtx(c.Context()).Error("admin: load product failed", "error", err)
		c.Flash(flashError, userMessage(err, "Failed to fetch products"))
	}
	c.SeeOther("/admin?tab=products")
}

func (a *AdminController) render(c *ctx.Context, code int, page views.AdminPage) {
	a.renderWithError(c, code, page, "")
}

// renderWithError loads the data for page.Tab. Load failures are logged and
// shown; the rest of the page still renders.
func (a *AdminController) renderWithError(c *ctx.Context, code int, page views.AdminPage, msg string) {
	api := a.backend(c)
	log := logger.WithCtx(c.Context())

	var err error
	switch page.Tab {
	case tabProducts:
		page.Categories = models.Categories()
		page.Products, err = api.GetProducts(c.Context())
		if err != nil {
			msg = firstNonEmpty(msg, userMessage(err, "Failed to fetch products"))
		}
	case tabOrders:
		page.Statuses = models.OrderStatuses()
		page.Orders, err = api.GetOrders(c.Context())
		if err != nil {
			msg = firstNonEmpty(msg, userMessage(err, "Failed to fetch orders"))
		}
		models.SortOrdersByDateDesc(page.Orders)
	default:
		page.Tab = tabDashboard
		var stats models.DashboardStats
		stats, err = api.GetDashboardStats(c.Context())
		if err != nil {
			msg = firstNonEmpty(msg, userMessage(err, "Failed to fetch dashboard stats"))
		} else {
			page.Stats = &stats
		}
	}
	if err != nil {
		log.Error("admin: load tab failed", "tab", page.Tab, "error", err)
	}

	page.Layout = layoutFor(c, "Administración")
	if msg != "" {
		page.Error = msg
	}
	c.Render(code, views.Pages, "admin", page)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
