package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gostore/orderflow/internal/order/domain"
)

type CustomerRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCustomerRepository(log *slog.Logger, pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{log: log, pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO customers (id, name, email, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Email, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, created_at, updated_at FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}
