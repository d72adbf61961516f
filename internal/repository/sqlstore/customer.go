package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-order-management/internal/entity"
)

type customerRepo struct {
	q querier
	s *Store
}

func (r *customerRepo) Create(ctx context.Context, c *entity.Customer) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	err := r.q.QueryRowContext(ctx,
		"INSERT INTO customers (name, email, phone) VALUES ($1, $2, $3) RETURNING id",
		c.Name, c.Email, c.Phone,
	).Scan(&c.ID)
	if err != nil {
		return mapErr(fmt.Errorf("failed to insert customer: %w", err))
	}
	return nil
}

func (r *customerRepo) Get(ctx context.Context, id int64) (*entity.Customer, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var c entity.Customer
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, email, phone FROM customers WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("customer", id)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query customer: %w", err))
	}
	return &c, nil
}

func (r *customerRepo) Update(ctx context.Context, c *entity.Customer) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		"UPDATE customers SET name = $1, email = $2, phone = $3 WHERE id = $4",
		c.Name, c.Email, c.Phone, c.ID,
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to update customer: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("customer", c.ID)
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete customer: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("customer", id)
	}
	return nil
}

func (r *customerRepo) FindAll(ctx context.Context) ([]entity.Customer, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, "SELECT id, name, email, phone FROM customers ORDER BY id")
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query customers: %w", err))
	}
	defer rows.Close()

	var customers []entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, mapErr(fmt.Errorf("failed to scan customer: %w", err))
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating customer rows: %w", err))
	}
	return customers, nil
}
