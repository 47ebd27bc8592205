package models

import (
	"sort"
	"time"
)

// CartItem is a product line in a cart or an order snapshot.
// The product fields are flattened into the same JSON object.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price × quantity for this line.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pendiente"
	OrderPreparing OrderStatus = "Preparando"
	OrderDelivered OrderStatus = "Entregado"
	OrderCancelled OrderStatus = "Cancelado"
)

// OrderStatuses lists every status in workflow order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderPreparing, OrderDelivered, OrderCancelled}
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Order is a submitted cart.
type Order struct {
	ID              string      `json:"id"`
	CustomerName    string      `json:"customerName"`
	CustomerAddress string      `json:"customerAddress"`
	Items           []CartItem  `json:"items"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	Date            time.Time   `json:"date"`
}

// OrderDraft is what checkout sends; the backend assigns id, status and date.
type OrderDraft struct {
	CustomerName    string     `json:"customerName"`
	CustomerAddress string     `json:"customerAddress"`
	Items           []CartItem `json:"items"`
	Total           float64    `json:"total"`
}

// SortOrdersByDateDesc sorts newest first, in place.
func SortOrdersByDateDesc(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
}

// DashboardStats are the aggregate figures computed by the backend.
type DashboardStats struct {
	TotalSales      float64 `json:"totalSales"`
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	PopularCategory string  `json:"popularCategory"`
}
