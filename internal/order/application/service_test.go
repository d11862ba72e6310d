package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostore/orderflow/internal/order/application"
	"github.com/gostore/orderflow/internal/order/domain"
)

type fakeCustomers struct {
	customers map[string]domain.Customer
	findCalls int
}

func (f *fakeCustomers) Create(_ context.Context, c domain.Customer) (domain.Customer, error) {
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeCustomers) FindByID(_ context.Context, id string) (domain.Customer, error) {
	f.findCalls++
	c, ok := f.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

type fakeProducts struct {
	products   map[string]domain.Product
	findCalls  int
	updates    [][]domain.QuantityUpdate
	updateErr  error
}

func (f *fakeProducts) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	f.findCalls++
	var found []domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (f *fakeProducts) UpdateQuantities(_ context.Context, updates []domain.QuantityUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range updates {
		p := f.products[u.ProductID]
		p.Quantity = u.Quantity
		f.products[u.ProductID] = p
	}
	f.updates = append(f.updates, updates)
	return nil
}

type fakeOrders struct {
	created   []domain.Order
	createErr error
}

func (f *fakeOrders) Create(_ context.Context, customer domain.Customer, lines []domain.OrderLineItem) (domain.Order, error) {
	if f.createErr != nil {
		return domain.Order{}, f.createErr
	}
	o := domain.NewOrder(fmt.Sprintf("order-%d", len(f.created)+1), customer.ID, lines)
	f.created = append(f.created, o)
	return o, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (domain.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

type env struct {
	svc       *application.Service
	customers *fakeCustomers
	products  *fakeProducts
	orders    *fakeOrders
}

func newEnv() *env {
	customers := &fakeCustomers{customers: map[string]domain.Customer{
		"c1": {ID: "c1", Name: "Ada", Email: "ada@example.com"},
	}}
	products := &fakeProducts{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "keyboard", PriceCents: 1000, Quantity: 5},
		"p2": {ID: "p2", Name: "mouse", PriceCents: 550, Quantity: 3},
	}}
	orders := &fakeOrders{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		svc:       application.NewService(log, customers, products, orders),
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

func TestCreateOrder_CustomerNotFound(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "ghost", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	assert.Zero(t, e.products.findCalls, "no product lookup after a failed customer check")
	assert.Empty(t, e.orders.created)
	assert.Empty(t, e.products.updates)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, e.orders.created)
	assert.Empty(t, e.products.updates)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 6}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Empty(t, e.orders.created, "no order persisted")
	assert.Equal(t, 5, e.products.products["p1"].Quantity, "stock untouched")
}

func TestCreateOrder_RejectsWholeOrder(t *testing.T) {
	e := newEnv()

	// p1 alone would fit; p2 does not. Nothing may be partially fulfilled.
	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 4},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, e.orders.created)
	assert.Equal(t, 5, e.products.products["p1"].Quantity)
	assert.Equal(t, 3, e.products.products["p2"].Quantity)
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 0}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, e.orders.created)
}

func TestCreateOrder_NegativeQuantity(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: -2}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, e.products.products["p1"].Quantity)
}

func TestCreateOrder_EmptyInput(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), "c1", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.CreateOrder(context.Background(), "", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_HappyPath(t *testing.T) {
	e := newEnv()

	order, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, domain.OrderLineItem{ProductID: "p1", PriceCents: 1000, Quantity: 2}, order.Lines[0])
	assert.Equal(t, int64(2000), order.TotalCents)
	assert.Equal(t, "c1", order.CustomerID)
	assert.Equal(t, 3, e.products.products["p1"].Quantity)
	require.Len(t, e.orders.created, 1)
}

func TestCreateOrder_MultiProduct(t *testing.T) {
	e := newEnv()

	order, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, domain.OrderLineItem{ProductID: "p1", PriceCents: 1000, Quantity: 2}, order.Lines[0])
	assert.Equal(t, domain.OrderLineItem{ProductID: "p2", PriceCents: 550, Quantity: 3}, order.Lines[1])
	assert.Equal(t, 3, e.products.products["p1"].Quantity)
	assert.Equal(t, 0, e.products.products["p2"].Quantity)
}

func TestCreateOrder_DuplicateLinesAggregate(t *testing.T) {
	e := newEnv()

	order, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, order.Lines, 1, "duplicate lines collapse into one")
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.Equal(t, 2, e.products.products["p1"].Quantity, "decrement covers the summed quantity")
}

func TestCreateOrder_DuplicateLinesExceedingStock(t *testing.T) {
	e := newEnv()

	// 3 + 3 = 6 exceeds the 5 in stock even though each line alone fits.
	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", Quantity: 3},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, e.products.products["p1"].Quantity)
}

func TestCreateOrder_NotIdempotent(t *testing.T) {
	e := newEnv()
	lines := []domain.OrderLineRequest{{ProductID: "p1", Quantity: 2}}

	first, err := e.svc.CreateOrder(context.Background(), "c1", lines)
	require.NoError(t, err)
	second, err := e.svc.CreateOrder(context.Background(), "c1", lines)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "each call creates a distinct order")
	assert.Equal(t, 1, e.products.products["p1"].Quantity, "stock decremented twice")
	assert.Len(t, e.orders.created, 2)
}

func TestCreateOrder_PersistenceError(t *testing.T) {
	e := newEnv()
	e.orders.createErr = errors.New("connection reset")

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 2}})
	require.ErrorIs(t, err, domain.ErrOrderPersistence)

	assert.Empty(t, e.products.updates, "no decrement after a failed persist")
	assert.Equal(t, 5, e.products.products["p1"].Quantity)
}

func TestCreateOrder_InventoryUpdateError(t *testing.T) {
	e := newEnv()
	e.products.updateErr = errors.New("stock changed concurrently")

	_, err := e.svc.CreateOrder(context.Background(), "c1", []domain.OrderLineRequest{{ProductID: "p1", Quantity: 2}})
	require.ErrorIs(t, err, domain.ErrInventoryUpdate)

	assert.Len(t, e.orders.created, 1, "order was already persisted when the decrement failed")
}

func TestRegisterCustomer_Validation(t *testing.T) {
	e := newEnv()

	_, err := e.svc.RegisterCustomer(context.Background(), "", "ada@example.com")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := e.svc.RegisterCustomer(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
}

func TestRegisterProduct_Validation(t *testing.T) {
	e := newEnv()

	_, err := e.svc.RegisterProduct(context.Background(), "keyboard", -1, 5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.RegisterProduct(context.Background(), "keyboard", 1000, -1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := e.svc.RegisterProduct(context.Background(), "keyboard", 1000, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 5, p.Quantity)
}
