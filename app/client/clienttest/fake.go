// Package clienttest provides an in-memory client.Backend for tests.
package clienttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
)

// Fake is a goroutine-safe in-memory backend. Set Errs[op] to make an
// operation fail; op names match the method names ("CreateOrder", ...).
type Fake struct {
	mu sync.Mutex

	Products  []models.Product
	Orders    []models.Order
	Stats     models.DashboardStats
	LoginResp models.AuthResponse
	Errs      map[string]error

	// Delay is slept inside CreateOrder to widen race windows in tests.
	Delay time.Duration

	Calls     map[string]int
	LastToken string
	nextID    int
}

var _ client.Backend = (*Fake)(nil)

func New() *Fake {
	return &Fake{Errs: map[string]error{}, Calls: map[string]int{}}
}

func (f *Fake) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[op]++
	return f.Errs[op]
}

// Count returns how many times op was called.
func (f *Fake) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// Fail makes op return err until cleared with Fail(op, nil).
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Errs, op)
		return
	}
	f.Errs[op] = err
}

func (f *Fake) WithToken(token string) client.Backend {
	f.mu.Lock()
	f.LastToken = token
	f.mu.Unlock()
	return f
}

func (f *Fake) GetProducts(context.Context) ([]models.Product, error) {
	if err := f.call("GetProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.Products...), nil
}

func (f *Fake) AddProduct(_ context.Context, in models.ProductInput) (models.Product, error) {
	if err := f.call("AddProduct"); err != nil {
		return models.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := models.Product{
		ID:          fmt.Sprintf("p%d", f.nextID),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Image:       in.Image,
	}
	f.Products = append(f.Products, p)
	return p, nil
}

func (f *Fake) UpdateProduct(_ context.Context, p models.Product) error {
	if err := f.call("UpdateProduct"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Products {
		if f.Products[i].ID == p.ID {
			f.Products[i] = p
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "Product not found"}
}

func (f *Fake) DeleteProduct(_ context.Context, id string) error {
	if err := f.call("DeleteProduct"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Products[:0]
	for _, p := range f.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.Products = kept
	return nil
}

func (f *Fake) CreateOrder(ctx context.Context, d models.OrderDraft) (models.Order, error) {
	if err := f.call("CreateOrder"); err != nil {
		return models.Order{}, err
	}
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return models.Order{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o := models.Order{
		ID:              fmt.Sprintf("o%d", f.nextID),
		CustomerName:    d.CustomerName,
		CustomerAddress: d.CustomerAddress,
		Items:           d.Items,
		Total:           d.Total,
		Status:          models.OrderPending,
		Date:            time.Now(),
	}
	f.Orders = append(f.Orders, o)
	return o, nil
}

func (f *Fake) GetOrders(context.Context) ([]models.Order, error) {
	if err := f.call("GetOrders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order(nil), f.Orders...), nil
}

func (f *Fake) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus) error {
	if err := f.call("UpdateOrderStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Orders {
		if f.Orders[i].ID == id {
			f.Orders[i].Status = status
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "Order not found"}
}

func (f *Fake) GetDashboardStats(context.Context) (models.DashboardStats, error) {
	if err := f.call("GetDashboardStats"); err != nil {
		return models.DashboardStats{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Stats, nil
}

func (f *Fake) Login(context.Context, models.Credentials) (models.AuthResponse, error) {
	if err := f.call("Login"); err != nil {
		return models.AuthResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginResp, nil
}
