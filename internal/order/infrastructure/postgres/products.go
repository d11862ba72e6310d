package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gostore/orderflow/internal/order/domain"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO products (id, name, price_cents, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.Name, p.PriceCents, p.Quantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price_cents, quantity, created_at, updated_at
		FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateQuantities sets new absolute stock levels in a single transaction.
// Each update only applies while the stored quantity is still at or above
// the target, so a concurrent request that already took more stock makes
// this one fail instead of silently restoring units.
func (r *ProductRepository) UpdateQuantities(ctx context.Context, updates []domain.QuantityUpdate) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE products SET quantity=$2, updated_at=now() WHERE id=$1 AND quantity >= $2`,
			u.ProductID, u.Quantity)
	}
	results := tx.SendBatch(ctx, batch)
	for _, u := range updates {
		ct, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return err
		}
		if ct.RowsAffected() == 0 {
			_ = results.Close()
			return fmt.Errorf("product %s: stock changed concurrently", u.ProductID)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
