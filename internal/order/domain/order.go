package domain

import "time"

// OrderLineRequest is one requested (product, quantity) pair as it arrives
// from the caller, before any validation.
type OrderLineRequest struct {
	ProductID string
	Quantity  int
}

// OrderLineItem is one line of a persisted order. PriceCents is the product
// price captured at order time; later catalog price changes do not touch it.
type OrderLineItem struct {
	ProductID  string
	PriceCents int64
	Quantity   int
}

type Order struct {
	ID         string
	CustomerID string
	Lines      []OrderLineItem
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewOrder(id, customerID string, lines []OrderLineItem) Order {
	var total int64
	for _, line := range lines {
		total += int64(line.Quantity) * line.PriceCents
	}
	now := time.Now().UTC()
	return Order{
		ID:         id,
		CustomerID: customerID,
		Lines:      lines,
		TotalCents: total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
