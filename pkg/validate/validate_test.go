package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/validate"
)

type productForm struct {
	Name     string  `form:"name"     label:"nombre"    validate:"required,max=10"`
	Price    float64 `form:"price"    label:"precio"    validate:"gte=0,lte=1000"`
	Category string  `form:"category" label:"categoría" validate:"required,in=Hamburguesas,Pizzas,Bebidas,Postres"`
	Image    string  `form:"image"    label:"imagen"    validate:"nullable,url"`
	Email    string  `json:"email"                      validate:"nullable,email"`
}

func TestValid(t *testing.T) {
	errs := validate.Struct(productForm{Name: "Clásica", Price: 5, Category: "Pizzas", Image: "/storage/a.jpg"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)

	errs = validate.Struct(&productForm{Name: "Cola", Category: "Bebidas", Image: "https://picsum.photos/400/300"})
	assert.Empty(t, errs)
}

func TestFailures(t *testing.T) {
	errs := validate.Struct(productForm{
		Name:     "",
		Price:    -1,
		Category: "Sushi",
		Image:    "javascript:alert(1)",
		Email:    "nope",
	})

	assert.Equal(t, "El campo nombre es obligatorio.", errs["name"])
	assert.Equal(t, "El campo precio debe ser mayor o igual a 0.", errs["price"])
	assert.Equal(t, "El valor de categoría no es válido.", errs["category"])
	assert.Equal(t, "El campo imagen debe ser una URL válida.", errs["image"])
	assert.Equal(t, "El campo email debe ser un correo válido.", errs["email"])
}

func TestMaxLengthCountsRunes(t *testing.T) {
	errs := validate.Struct(productForm{Name: "ñññññññññññ", Category: "Pizzas"})
	assert.Contains(t, errs["name"], "no puede superar 10 caracteres")
}

func TestProtocolRelativeURLRejected(t *testing.T) {
	errs := validate.Struct(productForm{Name: "x", Category: "Pizzas", Image: "//evil.example/a.png"})
	assert.Contains(t, errs, "image")
}

type photoForm struct {
	Image string `form:"image" label:"imagen" validate:"nullable,image=40"`
}

func TestImageAcceptsInlineDataOfAnyLength(t *testing.T) {
	inline := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 500)
	assert.Empty(t, validate.Struct(photoForm{Image: inline}))
	assert.Empty(t, validate.Struct(photoForm{Image: "https://picsum.photos/400/300"}))
	assert.Empty(t, validate.Struct(photoForm{Image: "/storage/products/a.png"}))

	for _, bad := range []string{
		"data:text/html;base64,PHNjcmlwdD4=",
		"data:image/svg+xml;base64,PHN2Zz4=",
		"data:image/png",
		"javascript:alert(1)",
		"/\\evil.example/a.png",
		"https://picsum.photos/" + strings.Repeat("a", 40),
	} {
		assert.Contains(t, validate.Struct(photoForm{Image: bad}), "image", bad)
	}
}
