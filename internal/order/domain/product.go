package domain

import "time"

// Product is a catalog entry. Quantity is the stock currently on hand; the
// order workflow is the only writer of Quantity in this service.
type Product struct {
	ID         string
	Name       string
	PriceCents int64
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProduct(id, name string, priceCents int64, quantity int) Product {
	now := time.Now().UTC()
	return Product{
		ID:         id,
		Name:       name,
		PriceCents: priceCents,
		Quantity:   quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// QuantityUpdate sets a product's stock to a new absolute level.
type QuantityUpdate struct {
	ProductID string
	Quantity  int
}
