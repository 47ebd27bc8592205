// Package client talks to the FastBite backend REST API.
//
//	api := client.New(config.APIURL(), config.APITimeout())
//	products, err := api.GetProducts(ctx)
//	order, err := api.WithToken(store.Token()).CreateOrder(ctx, draft)
//
// Non-2xx replies become *APIError carrying the backend's message when it sent
// one, or a fixed per-operation fallback. Transport failures are wrapped and
// returned as-is. Nothing is retried.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	fbhttp "github.com/jhonlemus05/FastBite-Delivery/pkg/http"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
)

// Backend is the set of remote operations the storefront uses.
type Backend interface {
	WithToken(token string) Backend

	GetProducts(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, draft models.OrderDraft) (models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error

	GetDashboardStats(ctx context.Context) (models.DashboardStats, error)

	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
}

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is the HTTP implementation of Backend. It is immutable; WithToken
// returns a copy.
type Client struct {
	baseURL string
	timeout time.Duration
	token   string
}

var _ Backend = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, timeout: timeout}
}

// WithToken returns a copy that sends "Authorization: Bearer <token>".
// An empty token sends no header.
func (c *Client) WithToken(token string) Backend {
	cp := *c
	cp.token = token
	return &cp
}

// ── Products ─────────────────────────────────────────────────────────────────

func (c *Client) GetProducts(ctx context.Context) (out []models.Product, err error) {
	defer metrics.ObserveAPICall("get_products", time.Now(), &err)

	var wire []wireProduct
	if err = c.do(ctx, http.MethodGet, "/products", nil, &wire, "Failed to fetch products"); err != nil {
		return nil, err
	}
	out = make([]models.Product, len(wire))
	for i, w := range wire {
		out[i] = w.normalize()
	}
	return out, nil
}

func (c *Client) AddProduct(ctx context.Context, in models.ProductInput) (p models.Product, err error) {
	defer metrics.ObserveAPICall("add_product", time.Now(), &err)

	var wire wireProduct
	if err = c.do(ctx, http.MethodPost, "/products", in, &wire, "Failed to create product"); err != nil {
		return models.Product{}, err
	}
	return wire.normalize(), nil
}

func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (err error) {
	defer metrics.ObserveAPICall("update_product", time.Now(), &err)
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(p.ID), p, nil, "Failed to update product")
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (err error) {
	defer metrics.ObserveAPICall("delete_product", time.Now(), &err)
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, "Failed to delete product")
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (c *Client) CreateOrder(ctx context.Context, draft models.OrderDraft) (o models.Order, err error) {
	defer metrics.ObserveAPICall("create_order", time.Now(), &err)

	var wire wireOrder
	if err = c.do(ctx, http.MethodPost, "/orders", draft, &wire, "Failed to create order"); err != nil {
		return models.Order{}, err
	}
	return wire.normalize(), nil
}

func (c *Client) GetOrders(ctx context.Context) (out []models.Order, err error) {
	defer metrics.ObserveAPICall("get_orders", time.Now(), &err)

	var wire []wireOrder
	if err = c.do(ctx, http.MethodGet, "/orders", nil, &wire, "Failed to fetch orders"); err != nil {
		return nil, err
	}
	out = make([]models.Order, len(wire))
	for i, w := range wire {
		out[i] = w.normalize()
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (err error) {
	defer metrics.ObserveAPICall("update_order_status", time.Now(), &err)

	body := map[string]models.OrderStatus{"status": status}
	return c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", body, nil, "Failed to update order status")
}

func (c *Client) GetDashboardStats(ctx context.Context) (s models.DashboardStats, err error) {
	defer metrics.ObserveAPICall("dashboard_stats", time.Now(), &err)

	err = c.do(ctx, http.MethodGet, "/orders/dashboard", nil, &s, "Failed to fetch dashboard stats")
	return s, err
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, creds models.Credentials) (r models.AuthResponse, err error) {
	defer metrics.ObserveAPICall("login", time.Now(), &err)

	if err = c.do(ctx, http.MethodPost, "/auth/login", creds, &r, "Login failed"); err != nil {
		return models.AuthResponse{}, err
	}
	if r.Token == "" {
		return models.AuthResponse{}, &APIError{Status: http.StatusBadGateway, Message: "Login failed"}
	}
	return r, nil
}

// ── Transport ────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}, fallback string) error {
	req := c.request(method, path).WithContext(ctx).Timeout(c.timeout)
	if body != nil {
		req.Body(body)
	}
	if c.token != "" {
		req.Bearer(c.token)
	}

	resp, err := req.Send()
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if !resp.OK() {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Raw, fallback)}
	}
	if dest == nil || len(resp.Raw) == 0 {
		return nil
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	return nil
}

func (c *Client) request(method, path string) *fbhttp.Request {
	u := c.baseURL + path
	switch method {
	case http.MethodPost:
		return fbhttp.Post(u)
	case http.MethodPut:
		return fbhttp.Put(u)
	case http.MethodDelete:
		return fbhttp.Delete(u)
	default:
		return fbhttp.Get(u)
	}
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fallback
}
