package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-order-management/internal/entity"
)

type productRepo struct {
	q querier
	s *Store
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	err := r.q.QueryRowContext(ctx,
		"INSERT INTO products (name, price, stock_quantity) VALUES ($1, $2, $3) RETURNING id",
		p.Name, p.Price, p.StockQuantity,
	).Scan(&p.ID)
	if err != nil {
		return mapErr(fmt.Errorf("failed to insert product: %w", err))
	}
	return nil
}

func (r *productRepo) Get(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var p entity.Product
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, price, stock_quantity FROM products WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query product: %w", err))
	}
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		"UPDATE products SET name = $1, price = $2, stock_quantity = $3 WHERE id = $4",
		p.Name, p.Price, p.StockQuantity, p.ID,
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to update product: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("product", p.ID)
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return entity.Validation("id", "product is referenced by existing orders")
		}
		return mapErr(fmt.Errorf("failed to delete product: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("product", id)
	}
	return nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]entity.Product, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		"SELECT id, name, price, stock_quantity FROM products ORDER BY id")
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query products: %w", err))
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity); err != nil {
			return nil, mapErr(fmt.Errorf("failed to scan product: %w", err))
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating product rows: %w", err))
	}
	return products, nil
}

func (r *productRepo) Restock(ctx context.Context, id int64, quantity int) (*entity.Product, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var p entity.Product
	err := r.q.QueryRowContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2 RETURNING id, name, price, stock_quantity",
		quantity, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to restock product: %w", err))
	}
	return &p, nil
}

// ReserveStock is the guarded decrement: the stock check and the write are a
// single statement, so two concurrent reservations can never jointly
// oversell a product.
func (r *productRepo) ReserveStock(ctx context.Context, id int64, quantity int) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity - $1 WHERE id = $2 AND stock_quantity >= $1",
		quantity, id,
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to reserve stock: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: either the product is gone or the stock ran out.
	var available int
	err = r.q.QueryRowContext(ctx,
		"SELECT stock_quantity FROM products WHERE id = $1", id,
	).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("product", id)
	}
	if err != nil {
		return mapErr(fmt.Errorf("failed to query product stock: %w", err))
	}
	return &entity.InsufficientStockError{ProductID: id, Available: available, Requested: quantity}
}
