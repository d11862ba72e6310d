package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gostore/orderflow/internal/order/domain"
)

type Service struct {
	log       *slog.Logger
	customers CustomerRepository
	products  ProductRepository
	orders    OrderRepository
}

func NewService(log *slog.Logger, customers CustomerRepository, products ProductRepository, orders OrderRepository) *Service {
	return &Service{
		log:       log,
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// CreateOrder runs the placement sequence: validate the customer, validate
// product existence and stock, build line items with the price captured at
// order time, persist the order, then decrement stock. Every validation gate
// exits early with nothing mutated; a decrement failure after persistence
// surfaces as domain.ErrInventoryUpdate with the order already stored.
//
// CreateOrder is a plain create, not an upsert: two identical calls produce
// two orders and decrement stock twice.
func (s *Service) CreateOrder(ctx context.Context, customerID string, requested []domain.OrderLineRequest) (domain.Order, error) {
	if customerID == "" {
		return domain.Order{}, fmt.Errorf("%w: customer id is required", domain.ErrInvalidInput)
	}
	if len(requested) == 0 {
		return domain.Order{}, fmt.Errorf("%w: order has no lines", domain.ErrInvalidInput)
	}

	// Repeated product IDs collapse into one line with the summed quantity,
	// so the existence count and the decrement both see the caller's intent.
	lines := aggregateLines(requested)

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Order{}, err
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return domain.Order{}, err
	}
	if len(products) < len(ids) {
		return domain.Order{}, domain.ErrProductNotFound
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: product %s: quantity %d", domain.ErrInsufficientStock, line.ProductID, line.Quantity)
		}
		if byID[line.ProductID].Quantity-line.Quantity < 0 {
			return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, line.ProductID)
		}
	}

	items := make([]domain.OrderLineItem, 0, len(lines))
	updates := make([]domain.QuantityUpdate, 0, len(lines))
	for _, line := range lines {
		p := byID[line.ProductID]
		items = append(items, domain.OrderLineItem{
			ProductID:  p.ID,
			PriceCents: p.PriceCents,
			Quantity:   line.Quantity,
		})
		updates = append(updates, domain.QuantityUpdate{
			ProductID: p.ID,
			Quantity:  p.Quantity - line.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, customer, items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}

	if err := s.products.UpdateQuantities(ctx, updates); err != nil {
		s.log.Error("stock decrement failed after order was persisted",
			"order_id", order.ID, "customer_id", customer.ID, "err", err)
		return domain.Order{}, fmt.Errorf("%w: order %s: %v", domain.ErrInventoryUpdate, order.ID, err)
	}

	s.log.Info("order created", "order_id", order.ID, "customer_id", customer.ID,
		"lines", len(order.Lines), "total_cents", order.TotalCents)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) RegisterCustomer(ctx context.Context, name, email string) (domain.Customer, error) {
	if name == "" || email == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name and email are required", domain.ErrInvalidInput)
	}
	return s.customers.Create(ctx, domain.NewCustomer(uuid.NewString(), name, email))
}

func (s *Service) RegisterProduct(ctx context.Context, name string, priceCents int64, quantity int) (domain.Product, error) {
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	if priceCents < 0 || quantity < 0 {
		return domain.Product{}, fmt.Errorf("%w: price and quantity must not be negative", domain.ErrInvalidInput)
	}
	return s.products.Create(ctx, domain.NewProduct(uuid.NewString(), name, priceCents, quantity))
}

// aggregateLines sums quantities for repeated product IDs, preserving the
// position where each product first appears.
func aggregateLines(requested []domain.OrderLineRequest) []domain.OrderLineRequest {
	index := make(map[string]int, len(requested))
	lines := make([]domain.OrderLineRequest, 0, len(requested))
	for _, r := range requested {
		if i, ok := index[r.ProductID]; ok {
			lines[i].Quantity += r.Quantity
			continue
		}
		index[r.ProductID] = len(lines)
		lines = append(lines, r)
	}
	return lines
}
