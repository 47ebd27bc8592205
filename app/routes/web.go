package routes

import (
	"net/http"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/controllers"
	"github.com/jhonlemus05/FastBite-Delivery/app/repositories"
	"github.com/jhonlemus05/FastBite-Delivery/app/services"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/app/views"
	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/app"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/ctx"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/middleware"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/rbac"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/router"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/storage"
)

// Backend builds the API client used by the routes. Tests replace it.
var Backend = func() client.Backend {
	return client.New(config.APIURL(), config.APITimeout())
}

// RegisterWeb mounts the storefront and back-office.
func RegisterWeb(r *router.Router, infra *app.Infra) {
	api := Backend()

	var prefStore services.PreferenceStore
	if infra.DB != nil {
		prefStore = repositories.NewPreferenceRepository(infra.DB)
	}

	catalog := services.NewCatalogService(api, infra.Cache, config.CatalogTTL())
	infra.Once("web:background", func() {
		services.RegisterListeners(infra.Events)
		if every := config.CatalogWarmInterval(); every > 0 && infra.Tasks != nil {
			infra.Tasks.Interval(every).Name("catalog:warm").WithoutOverlapping().Run(catalog.Warm)
		}
	})
	checkout := services.NewCheckoutService(api, infra.Cache, config.CheckoutLockTTL(), config.SessionTTL(), infra.Events)
	authSvc := services.NewAuthService(api, config.AuthMode() == "demo")
	images := services.NewImageService(infra.Disk, config.MaxUploadBytes())
	prefs := services.NewPreferencesService(prefStore, config.SessionSecure())

	home := controllers.NewHomeController()
	menu := controllers.NewMenuController(catalog)
	cart := controllers.NewCartController(checkout)
	authCtl := controllers.NewAuthController(authSvc)
	a11y := controllers.NewAccessibilityController(prefs)
	admin := controllers.NewAdminController(api, catalog, images)

	r.Get("/healthz", "health", ctx.Wrap(controllers.Health))
	r.Handle("/static/*", "static", views.Static())
	if local, ok := infra.Disk.(*storage.Local); ok {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage", local.Handler()))
	}

	visitor := []router.Middleware{prefs.Middleware, store.Middleware(infra.Events, prefs.Seed)}
	r.NotFound(router.Chain(ctx.Wrap(controllers.NotFound), visitor...).ServeHTTP)

	web := r.Group("", visitor...)
	web.Get("/", "home", ctx.Wrap(home.Index))
	web.Get("/menu", "menu", ctx.Wrap(menu.Index))

	web.Get("/cart", "cart.show", ctx.Wrap(cart.Show))
	web.Post("/cart/items", "cart.add", ctx.Wrap(menu.Add))
	web.Post("/cart/items/{id}/remove", "cart.remove", ctx.Wrap(cart.Remove))
	web.Post("/checkout", "checkout", ctx.Wrap(cart.Checkout))

	web.Get("/login", "login.show", ctx.Wrap(authCtl.Show), rbac.Guest)
	web.Post("/login", "login", ctx.Wrap(authCtl.Login), middleware.RateLimit(config.LoginRateLimit(), time.Minute))
	web.Post("/logout", "logout", ctx.Wrap(authCtl.Logout))

	web.Post("/accessibility/contrast", "a11y.contrast", ctx.Wrap(a11y.Contrast))
	web.Post("/accessibility/font/increase", "a11y.font.increase", ctx.Wrap(a11y.Increase))
	web.Post("/accessibility/font/decrease", "a11y.font.decrease", ctx.Wrap(a11y.Decrease))
	web.Post("/accessibility/font/reset", "a11y.font.reset", ctx.Wrap(a11y.Reset))

	adm := web.Group("/admin", rbac.Admin)
	adm.Get("", "admin", ctx.Wrap(admin.Index))
	adm.Post("/products", "admin.products.save", ctx.Wrap(admin.SaveProduct))
	adm.Get("/products/{id}/edit", "admin.products.edit", ctx.Wrap(admin.Edit))
	adm.Get("/products/{id}/delete", "admin.products.confirm_delete", ctx.Wrap(admin.ConfirmDelete))
	adm.Post("/products/{id}/delete", "admin.products.delete", ctx.Wrap(admin.DeleteProduct))
	adm.Post("/orders/{id}/status", "admin.orders.status", ctx.Wrap(admin.UpdateStatus))
}

