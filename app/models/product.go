package models

// Category is a menu section. Values are the labels the backend stores.
type Category string

const (
	CategoryBurger  Category = "Hamburguesas"
	CategoryPizza   Category = "Pizzas"
	CategoryDrink   Category = "Bebidas"
	CategoryDessert Category = "Postres"
)

// Categories returns every category in menu display order.
func Categories() []Category {
	return []Category{CategoryBurger, CategoryPizza, CategoryDrink, CategoryDessert}
}

// ParseCategory reports whether s names a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DefaultProductImage is used when an admin saves a product without an image.
const DefaultProductImage = "https://picsum.photos/400/300"

// Product is a menu item as served by the backend.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
}

// ProductInput is the payload for creating a product (no id yet).
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
}

// FilterByCategory returns the products in c, or all of them when c is empty.
func FilterByCategory(products []Product, c Category) []Product {
	if c == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}
