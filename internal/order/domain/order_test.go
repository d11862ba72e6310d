package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostore/orderflow/internal/order/domain"
)

func TestNewOrder_Total(t *testing.T) {
	lines := []domain.OrderLineItem{
		{ProductID: "p1", PriceCents: 1000, Quantity: 2},
		{ProductID: "p2", PriceCents: 550, Quantity: 3},
	}
	o := domain.NewOrder("o1", "c1", lines)

	assert.Equal(t, int64(2000+1650), o.TotalCents)
	assert.Equal(t, "c1", o.CustomerID)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestNewOrder_PreservesLineOrder(t *testing.T) {
	lines := []domain.OrderLineItem{
		{ProductID: "p2", PriceCents: 1, Quantity: 1},
		{ProductID: "p1", PriceCents: 1, Quantity: 1},
		{ProductID: "p3", PriceCents: 1, Quantity: 1},
	}
	o := domain.NewOrder("o1", "c1", lines)

	require.Len(t, o.Lines, 3)
	assert.Equal(t, "p2", o.Lines[0].ProductID)
	assert.Equal(t, "p1", o.Lines[1].ProductID)
	assert.Equal(t, "p3", o.Lines[2].ProductID)
}
