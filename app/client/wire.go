package client

import "github.com/jhonlemus05/FastBite-Delivery/app/models"

// The backend is MongoDB-backed and identifies documents by "_id".

type wireProduct struct {
	models.Product
	MongoID string `json:"_id"`
}

func (w wireProduct) normalize() models.Product {
	p := w.Product
	if w.MongoID != "" {
		p.ID = w.MongoID
	}
	return p
}

type wireItem struct {
	models.Product
	MongoID  string `json:"_id"`
	Quantity int    `json:"quantity"`
}

type wireOrder struct {
	models.Order
	MongoID string     `json:"_id"`
	Items   []wireItem `json:"items"`
}

func (w wireOrder) normalize() models.Order {
	o := w.Order
	if w.MongoID != "" {
		o.ID = w.MongoID
	}
	o.Items = make([]models.CartItem, len(w.Items))
	for i, it := range w.Items {
		p := it.Product
		if it.MongoID != "" && p.ID == "" {
			p.ID = it.MongoID
		}
		o.Items[i] = models.CartItem{Product: p, Quantity: it.Quantity}
	}
	return o
}
