package routes_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/client/clienttest"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/routes"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/app"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/auth"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/testkit"
)

const testSecret = "test-secret"

// scenarioTarget boots the real application against the real API client; the
// scenario's backendMock answers its calls.
func scenarioTarget(t *testing.T) testkit.Target {
	config.Set("API_URL", "http://backend.test/api")
	infra := app.NewTestInfra(t.TempDir())
	return testkit.Target{
		Handler: app.New(infra).Routes(routes.RegisterWeb).Handler(),
		Events:  infra.Events,
	}
}

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, scenarioTarget, "testdata")
}

// ─── Fake-backed harness ──────────────────────────────────────────────────────

type harness struct {
	api     *clienttest.Fake
	srv     *httptest.Server
	browser *testkit.Browser
}

func newHarness(t *testing.T, api *clienttest.Fake) *harness {
	t.Helper()

	prev := routes.Backend
	routes.Backend = func() client.Backend { return api }
	t.Cleanup(func() { routes.Backend = prev })

	infra := app.NewTestInfra(t.TempDir())
	srv := httptest.NewServer(app.New(infra).Routes(routes.RegisterWeb).Handler())
	t.Cleanup(srv.Close)

	return &harness{api: api, srv: srv, browser: testkit.NewBrowser(t)}
}

func (h *harness) get(t *testing.T, path string) testkit.Response {
	t.Helper()
	return h.browser.Do(t, h.srv.URL, testkit.Step{Method: http.MethodGet, URL: path})
}

func (h *harness) post(t *testing.T, path string, form map[string]string) testkit.Response {
	t.Helper()
	if form == nil {
		form = map[string]string{}
	}
	return h.browser.Do(t, h.srv.URL, testkit.Step{Method: http.MethodPost, URL: path, Form: form})
}

func withConfig(t *testing.T, key, value string) {
	t.Helper()
	prev := config.Get(key, "")
	config.Set(key, value)
	t.Cleanup(func() { config.Set(key, prev) })
}

func signed(t *testing.T, claims auth.Claims, secret string) string {
	t.Helper()
	tok, err := auth.Sign(claims, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func catalogFake() *clienttest.Fake {
	api := clienttest.New()
	api.Products = []models.Product{
		{ID: "1", Name: "Clásica", Price: 8.5, Category: models.CategoryBurger, Image: "https://img.test/1.jpg"},
		{ID: "2", Name: "Cola", Price: 2, Category: models.CategoryDrink, Image: "https://img.test/2.jpg"},
	}
	return api
}

// ─── Login ────────────────────────────────────────────────────────────────────

func TestLogin_RoleComesFromVerifiedToken(t *testing.T) {
	withConfig(t, "JWT_SECRET", testSecret)

	cases := []struct {
		name    string
		role    string
		landing string
		admin   int
	}{
		{"admin claim", "admin", "/admin", http.StatusOK},
		{"customer claim", "customer", "/menu", http.StatusSeeOther},
		{"no role claim", "", "/menu", http.StatusSeeOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := catalogFake()
			tok := signed(t, auth.Claims{ID: "u1", Username: "Ana", Role: tc.role}, testSecret)
			api.LoginResp = models.AuthResponse{Token: tok}
			h := newHarness(t, api)

			before := h.get(t, "/")
			require.Equal(t, http.StatusOK, before.Code)
			oldSession := h.browser.Cookie(t, h.srv.URL, "fastbite_session")

			res := h.post(t, "/login", map[string]string{"email": "admin@fastbite.test", "password": "pw"})
			assert.Equal(t, http.StatusSeeOther, res.Code)
			assert.Equal(t, tc.landing, res.Location)
			assert.NotEqual(t, oldSession, h.browser.Cookie(t, h.srv.URL, "fastbite_session"), "login must rotate the session id")

			assert.Equal(t, tc.admin, h.get(t, "/admin").Code)
			if tc.admin == http.StatusOK {
				assert.Equal(t, tok, api.LastToken, "admin calls carry the bearer token")
			}
		})
	}
}

func TestLogin_ForgedTokenIsRejected(t *testing.T) {
	withConfig(t, "JWT_SECRET", testSecret)

	api := catalogFake()
	api.LoginResp = models.AuthResponse{Token: signed(t, auth.Claims{Role: "admin"}, "someone-else")}
	h := newHarness(t, api)

	res := h.post(t, "/login", map[string]string{"email": "admin", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, string(res.Body), "No se pudo verificar la sesión")

	res = h.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Location)
}

func TestLogin_DemoModeIgnoredInProduction(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	withConfig(t, "APP_ENV", "production")
	withConfig(t, "JWT_SECRET", testSecret)

	api := catalogFake()
	api.Fail("Login", &client.APIError{Status: 401, Message: "Credenciales inválidas"})
	h := newHarness(t, api)

	res := h.post(t, "/login", map[string]string{"email": "admin", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, 1, api.Count("Login"), "production always asks the backend")
}

func TestCustomerCannotReachAdmin(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	h := newHarness(t, catalogFake())

	res := h.post(t, "/login", map[string]string{"email": "bob", "password": "x"})
	require.Equal(t, "/menu", res.Location)

	for _, path := range []string{"/admin", "/admin?tab=orders", "/admin/products/1/edit"} {
		res := h.get(t, path)
		assert.Equal(t, http.StatusSeeOther, res.Code, path)
		assert.Equal(t, "/login", res.Location, path)
	}
	res = h.post(t, "/admin/products/1/delete", nil)
	assert.Equal(t, "/login", res.Location)
	assert.Equal(t, 0, h.api.Count("DeleteProduct"))
}

// ─── Admin products ───────────────────────────────────────────────────────────

func multipartProduct(t *testing.T, baseURL string, fields map[string]string, file []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("imageFile", "burger.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, baseURL+"/admin/products", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestAdminProductLifecycle(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	h := newHarness(t, catalogFake())
	require.Equal(t, "/admin", h.post(t, "/login", map[string]string{"email": "admin", "password": "x"}).Location)

	// warm the catalog cache so the create below has to invalidate it
	require.NotContains(t, string(h.get(t, "/menu").Body), "Doble Queso")

	res := h.get(t, "/admin?tab=products&new=1")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), `name="imageFile"`)

	req := multipartProduct(t, h.srv.URL, map[string]string{
		"name": " Doble Queso ", "description": "Dos carnes", "price": "11.5", "category": "Hamburguesas",
	}, pngBytes)
	res = h.browser.Send(t, req)
	require.Equal(t, http.StatusSeeOther, res.Code, string(res.Body))
	assert.Equal(t, "/admin?tab=products", res.Location)

	require.Len(t, h.api.Products, 3)
	created := h.api.Products[2]
	assert.Equal(t, "Doble Queso", created.Name)
	assert.True(t, strings.HasPrefix(created.Image, "/storage/products/"), created.Image)
	assert.True(t, strings.HasSuffix(created.Image, ".png"), created.Image)

	img := h.get(t, created.Image)
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, pngBytes, img.Body)

	page := string(h.get(t, "/menu").Body)
	assert.Contains(t, page, "Doble Queso", "catalog cache is invalidated after a write")

	res = h.get(t, "/admin/products/"+created.ID+"/edit")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), `value="11.50"`)

	res = h.get(t, "/admin/products/"+created.ID+"/delete")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), "Doble Queso")

	res = h.post(t, "/admin/products/"+created.ID+"/delete", nil)
	assert.Equal(t, "/admin?tab=products", res.Location)
	assert.Contains(t, string(h.get(t, "/admin?tab=products").Body), "Producto eliminado.")
	assert.NotContains(t, string(h.get(t, "/menu").Body), "Doble Queso")
}

func TestAdminEditsProductWithInlineImage(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	inline := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 300)
	api := catalogFake()
	api.Products[0].Image = inline
	h := newHarness(t, api)
	h.post(t, "/login", map[string]string{"email": "admin", "password": "x"})

	res := h.get(t, "/admin/products/1/edit")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), inline, "edit form keeps the stored image")

	res = h.browser.Send(t, multipartProduct(t, h.srv.URL, map[string]string{
		"id": "1", "name": "Clásica", "price": "8.5", "category": "Hamburguesas", "image": inline,
	}, nil))
	require.Equal(t, http.StatusSeeOther, res.Code, string(res.Body))
	assert.Equal(t, 1, api.Count("UpdateProduct"))
	assert.Equal(t, inline, api.Products[0].Image)

	assert.Contains(t, string(h.get(t, "/menu").Body), `<img src="`+inline+`"`)
}

func TestAdminProductValidation(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	h := newHarness(t, catalogFake())
	h.post(t, "/login", map[string]string{"email": "admin", "password": "x"})

	cases := []struct {
		name   string
		fields map[string]string
		file   []byte
		want   string
	}{
		{"zero price", map[string]string{"name": "X", "price": "0"}, nil, "field-error"},
		{"bad category", map[string]string{"name": "X", "price": "3", "category": "Sopas"}, nil, "field-error"},
		{"not an image", map[string]string{"name": "X", "price": "3"}, []byte("plain text, not a picture"), "Solo se aceptan archivos de imagen."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := h.browser.Send(t, multipartProduct(t, h.srv.URL, tc.fields, tc.file))
			assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
			assert.Contains(t, string(res.Body), tc.want)
		})
	}
	assert.Equal(t, 0, h.api.Count("AddProduct"))
}

func TestAdminBackendErrorsAreShown(t *testing.T) {
	withConfig(t, "AUTH_MODE", "demo")
	api := catalogFake()
	h := newHarness(t, api)
	h.post(t, "/login", map[string]string{"email": "admin", "password": "x"})

	api.Fail("GetDashboardStats", &client.APIError{Status: 500})
	res := h.get(t, "/admin")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Body), "Failed to fetch dashboard stats")

	api.Fail("UpdateProduct", &client.APIError{Status: 500, Message: "Product locked"})
	res = h.browser.Send(t, multipartProduct(t, h.srv.URL, map[string]string{"id": "1", "name": "Clásica", "price": "9"}, nil))
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Contains(t, string(res.Body), "Product locked")

	res = h.get(t, "/admin/products/missing/edit")
	assert.Equal(t, "/admin?tab=products", res.Location)
	assert.Contains(t, string(h.get(t, "/admin?tab=products").Body), "Producto no encontrado.")
}

// ─── Checkout ─────────────────────────────────────────────────────────────────

func TestCheckoutSendsCartAndClearsIt(t *testing.T) {
	h := newHarness(t, catalogFake())

	h.post(t, "/cart/items", map[string]string{"productId": "1"})
	h.post(t, "/cart/items", map[string]string{"productId": "2"})
	h.post(t, "/cart/items", map[string]string{"productId": "1"})

	cart := h.get(t, "/cart")
	require.Contains(t, string(cart.Body), "Pagar $19.00")
	token := tokenFrom(t, cart.Body)

	res := h.post(t, "/checkout", map[string]string{"token": token, "customerName": "Ana", "customerAddress": "Calle 1"})
	require.Equal(t, "/cart", res.Location)

	require.Len(t, h.api.Orders, 1)
	o := h.api.Orders[0]
	assert.Equal(t, 19.0, o.Total)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "1", o.Items[0].ID)
	assert.Equal(t, 2, o.Items[0].Quantity)

	res = h.post(t, "/checkout", map[string]string{"token": token, "customerName": "Ana", "customerAddress": "Calle 1"})
	assert.Equal(t, "/cart", res.Location)
	assert.Equal(t, 1, h.api.Count("CreateOrder"))
}

func TestCheckoutRejectsStaleToken(t *testing.T) {
	h := newHarness(t, catalogFake())
	h.post(t, "/cart/items", map[string]string{"productId": "1"})

	res := h.post(t, "/checkout", map[string]string{"token": "made-up", "customerName": "Ana", "customerAddress": "Calle 1"})
	assert.Equal(t, "/cart", res.Location)
	assert.Contains(t, string(h.get(t, "/cart").Body), "Tu pedido ya se está procesando.")
	assert.Equal(t, 0, h.api.Count("CreateOrder"))
}

func tokenFrom(t *testing.T, body []byte) string {
	t.Helper()
	const marker = `name="token" value="`
	page := string(body)
	i := strings.Index(page, marker)
	require.GreaterOrEqual(t, i, 0, "cart page has no checkout token")
	rest := page[i+len(marker):]
	return rest[:strings.IndexByte(rest, '"')]
}

// ─── Routing table ────────────────────────────────────────────────────────────

func TestRouteNames(t *testing.T) {
	prev := routes.Backend
	routes.Backend = func() client.Backend { return clienttest.New() }
	t.Cleanup(func() { routes.Backend = prev })

	r := app.New(app.NewTestInfra(t.TempDir())).Routes(routes.RegisterWeb).Router()

	for name, want := range map[string]string{
		"menu":                  "/menu",
		"checkout":              "/checkout",
		"admin":                 "/admin",
		"admin.products.delete": "/admin/products/{id}/delete",
		"a11y.font.reset":       "/accessibility/font/reset",
	} {
		got, ok := r.Path(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	u, err := r.URL("admin.orders.status", map[string]string{"id": "o1"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/orders/o1/status", u)
}

func TestBackgroundSetupRunsOncePerInfra(t *testing.T) {
	withConfig(t, "CATALOG_WARM_INTERVAL", "1m")
	prev := routes.Backend
	routes.Backend = func() client.Backend { return catalogFake() }
	t.Cleanup(func() { routes.Backend = prev })

	infra := app.NewTestInfra(t.TempDir())
	a := app.New(infra).Routes(routes.RegisterWeb)
	a.Router()
	a.Handler()
	a.Router()

	assert.Equal(t, []string{"catalog:warm  [1m0s]"}, infra.Tasks.List())

	added := metrics.CartEvents.WithLabelValues("added")
	before := testutil.ToFloat64(added)
	infra.Events.Fire(event.CartItemAdded, store.CartEvent{ProductID: "1", Quantity: 1})
	assert.Equal(t, before+1, testutil.ToFloat64(added))
}
