package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/gostore/orderflow/internal/order/domain"
)

type OrderRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOrderRepository(log *slog.Logger, pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{log: log, pool: pool}
}

// Create assigns the order its ID and timestamps and stores the order, its
// line items, and an OrderCreated outbox row in one transaction.
func (r *OrderRepository) Create(ctx context.Context, customer domain.Customer, lines []domain.OrderLineItem) (domain.Order, error) {
	o := domain.NewOrder(uuid.NewString(), customer.ID, lines)

	payload, err := json.Marshal(domain.OrderCreated{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		TotalCents: o.TotalCents,
		Lines:      o.Lines,
	})
	if err != nil {
		return domain.Order{}, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_id, total_cents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.CustomerID, o.TotalCents, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	batch := &pgx.Batch{}
	for _, line := range o.Lines {
		batch.Queue(`INSERT INTO orders_products (order_id, product_id, price_cents, quantity)
			VALUES ($1,$2,$3,$4)`,
			o.ID, line.ProductID, line.PriceCents, line.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Order{}, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		"order", o.ID, "OrderCreated", payload, traceparentFrom(ctx))
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT id, customer_id, total_cents, created_at, updated_at FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.CustomerID, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT product_id, price_cents, quantity FROM orders_products
		WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.OrderLineItem
		if err := rows.Scan(&line.ProductID, &line.PriceCents, &line.Quantity); err != nil {
			return domain.Order{}, err
		}
		o.Lines = append(o.Lines, line)
	}
	return o, rows.Err()
}

func traceparentFrom(ctx context.Context) string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier["traceparent"]
}
