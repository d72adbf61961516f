package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-order-management/internal/entity"
)

type orderRepo struct {
	q querier
	s *Store
}

// Create inserts the order header and one line per entry. Callers that pair
// this with stock reservation must do so inside one transaction.
func (r *orderRepo) Create(ctx context.Context, o *entity.Order) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	err := r.q.QueryRowContext(ctx,
		"INSERT INTO orders (order_date, expected_delivery_date, customer_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		o.Date, o.ExpectedDeliveryDate, o.CustomerID, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return mapErr(fmt.Errorf("failed to insert order: %w", err))
	}

	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		_, err = r.q.ExecContext(ctx,
			"INSERT INTO order_lines (order_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)",
			o.ID, o.Lines[i].ProductID, o.Lines[i].Quantity, i,
		)
		if err != nil {
			return mapErr(fmt.Errorf("failed to insert order line: %w", err))
		}
	}
	return nil
}

func (r *orderRepo) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var o entity.Order
	err := r.q.QueryRowContext(ctx,
		"SELECT id, order_date, expected_delivery_date, customer_id, created_at FROM orders WHERE id = $1", id,
	).Scan(&o.ID, &o.Date, &o.ExpectedDeliveryDate, &o.CustomerID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("order", id)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query order: %w", err))
	}

	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]entity.Order, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		"SELECT id, order_date, expected_delivery_date, customer_id, created_at FROM orders ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query orders: %w", err))
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.Date, &o.ExpectedDeliveryDate, &o.CustomerID, &o.CreatedAt); err != nil {
			return nil, mapErr(fmt.Errorf("failed to scan order: %w", err))
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating order rows: %w", err))
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// loadLines attaches the order's lines with a product snapshot per line.
// Products referenced by lines cannot be deleted, so the join always hits.
func (r *orderRepo) loadLines(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.QueryContext(ctx, `
		SELECT l.product_id, l.quantity, p.id, p.name, p.price, p.stock_quantity
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.position`,
		o.ID,
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to query order lines: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		line := entity.OrderLine{OrderID: o.ID, Product: &entity.Product{}}
		if err := rows.Scan(
			&line.ProductID, &line.Quantity,
			&line.Product.ID, &line.Product.Name, &line.Product.Price, &line.Product.StockQuantity,
		); err != nil {
			return mapErr(fmt.Errorf("failed to scan order line: %w", err))
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return mapErr(fmt.Errorf("error iterating order line rows: %w", err))
	}
	return nil
}

// UpdateHeader replaces the order's header fields and leaves lines alone.
func (r *orderRepo) UpdateHeader(ctx context.Context, o *entity.Order) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		"UPDATE orders SET order_date = $1, expected_delivery_date = $2, customer_id = $3 WHERE id = $4",
		o.Date, o.ExpectedDeliveryDate, o.CustomerID, o.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return notFound("customer", o.CustomerID)
		}
		return mapErr(fmt.Errorf("failed to update order: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("order", o.ID)
	}
	return nil
}

// Delete removes the order; its lines go with it via the cascade. Reserved
// stock stays decremented.
func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete order: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("order", id)
	}
	return nil
}

func (r *orderRepo) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var count int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE customer_id = $1", customerID,
	).Scan(&count)
	if err != nil {
		return 0, mapErr(fmt.Errorf("failed to count orders: %w", err))
	}
	return count, nil
}
