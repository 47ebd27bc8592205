// Package views holds the storefront's HTML templates and the data each page
// renders. Templates are embedded in the binary.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/validate"
)

//go:embed templates/*.html
var files embed.FS

//go:embed static
var static embed.FS

// Pages is the parsed template set. Each page is a named template.
var Pages = template.Must(template.New("fastbite").Funcs(Funcs).ParseFS(files, "templates/*.html"))

// Static serves the stylesheet and other assets under /static/.
func Static() http.Handler {
	sub, _ := fs.Sub(static, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"money": Money,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"statusClass": func(s models.OrderStatus) string {
		switch s {
		case models.OrderDelivered:
			return "status-delivered"
		case models.OrderPending:
			return "status-pending"
		default:
			return "status-other"
		}
	},
	"safeImage": SafeImage,
	"itemSummary": func(items []models.CartItem) string {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		return strings.Join(parts, ", ")
	},
}

// SafeImage lets inline data:image/ URIs through html/template's URL filter.
// Anything else is returned as a plain string and filtered as usual.
func SafeImage(src string) any {
	if validate.IsImageDataURI(src) {
		return template.URL(src)
	}
	return src
}

// Money formats a price the way the menu shows it: "$5.00".
func Money(v float64) string { return fmt.Sprintf("$%.2f", v) }

// Layout is the data every page passes to the shell.
type Layout struct {
	AppName       string
	Title         string
	Path          string
	User          *models.User
	CartCount     int
	Accessibility models.Accessibility
	Notice        string
	Error         string
}

func (l Layout) IsAdmin() bool { return l.User != nil && l.User.IsAdmin() }

func (l Layout) FontAtMax() bool { return l.Accessibility.FontScale >= models.FontScaleMax }

func (l Layout) FontAtMin() bool { return l.Accessibility.FontScale <= models.FontScaleMin }

// NavClass returns "active" when path is the current page.
func (l Layout) NavClass(path string) string {
	if l.Path == path {
		return "active"
	}
	return ""
}

type HomePage struct {
	Layout
}

type MenuPage struct {
	Layout
	Products   []models.Product
	Categories []models.Category
	Category   string
}

// CheckoutForm is the delivery form on the cart page.
type CheckoutForm struct {
	CustomerName    string `form:"customerName" label:"Nombre completo" validate:"required,max=120"`
	CustomerAddress string `form:"customerAddress" label:"Dirección de entrega" validate:"required,max=240"`
	Token           string `form:"token"`
}

type CartPage struct {
	Layout
	Items     []models.CartItem
	Total     float64
	Form      CheckoutForm
	Errors    map[string]string
	Confirmed *models.Order
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" label:"Usuario / Email" validate:"required"`
	Password string `form:"password" label:"Contraseña" validate:"required"`
}

type LoginPage struct {
	Layout
	Form     LoginForm
	Errors   map[string]string
	DemoMode bool
}

// ProductForm is the admin create/edit form.
type ProductForm struct {
	ID          string  `form:"id"`
	Name        string  `form:"name" label:"Nombre" validate:"required,max=120"`
	Description string  `form:"description" label:"Descripción" validate:"max=500"`
	Price       float64 `form:"price" label:"Precio" validate:"required,gte=0.01"`
	Category    string  `form:"category" label:"Categoría" validate:"nullable,in=Hamburguesas,Pizzas,Bebidas,Postres"`
	Image       string  `form:"image" label:"URL de la imagen" validate:"nullable,image=2048"`
}

// Product converts the form to the model.
func (f ProductForm) Product() models.Product {
	return models.Product{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Category:    models.Category(f.Category),
		Image:       f.Image,
	}
}

// ProductFormFrom pre-fills the form for editing p.
func ProductFormFrom(p models.Product) ProductForm {
	return ProductForm{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		Image:       p.Image,
	}
}

type AdminPage struct {
	Layout
	Tab        string
	Stats      *models.DashboardStats
	Products   []models.Product
	Orders     []models.Order
	Statuses   []models.OrderStatus
	Categories []models.Category
	Editing    bool
	Form       ProductForm
	Errors     map[string]string
}

type ConfirmDeletePage struct {
	Layout
	Product models.Product
}
