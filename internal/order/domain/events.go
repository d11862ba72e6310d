package domain

type OrderCreated struct {
	OrderID    string
	CustomerID string
	TotalCents int64
	Lines      []OrderLineItem
}
