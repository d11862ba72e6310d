package application

import (
	"context"

	"github.com/gostore/orderflow/internal/order/domain"
)

// CustomerRepository resolves and stores customers. FindByID returns
// domain.ErrCustomerNotFound when the ID does not resolve.
type CustomerRepository interface {
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	FindByID(ctx context.Context, id string) (domain.Customer, error)
}

// ProductRepository gives batch access to the catalog. FindAllByID returns
// only the products that exist; missing IDs are simply absent from the result.
// UpdateQuantities applies all updates or none of them.
type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error)
	UpdateQuantities(ctx context.Context, updates []domain.QuantityUpdate) error
}

// OrderRepository persists orders. Create assigns the order ID and timestamps
// and returns the stored aggregate.
type OrderRepository interface {
	Create(ctx context.Context, customer domain.Customer, lines []domain.OrderLineItem) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
}
