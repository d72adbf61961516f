package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-order-management/internal/entity"
)

type accountRepo struct {
	q querier
	s *Store
}

func (r *accountRepo) Create(ctx context.Context, a *entity.CustomerAccount) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	err := r.q.QueryRowContext(ctx,
		"INSERT INTO customer_accounts (username, password, customer_id) VALUES ($1, $2, $3) RETURNING id",
		a.Username, a.Password, a.CustomerID,
	).Scan(&a.ID)
	if err != nil {
		return mapErr(accountConstraintErr(fmt.Errorf("failed to insert customer account: %w", err)))
	}
	return nil
}

func (r *accountRepo) Get(ctx context.Context, id int64) (*entity.CustomerAccount, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var a entity.CustomerAccount
	err := r.q.QueryRowContext(ctx,
		"SELECT id, username, password, customer_id FROM customer_accounts WHERE id = $1", id,
	).Scan(&a.ID, &a.Username, &a.Password, &a.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("customer account", id)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query customer account: %w", err))
	}
	return &a, nil
}

func (r *accountRepo) Update(ctx context.Context, a *entity.CustomerAccount) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx,
		"UPDATE customer_accounts SET username = $1, password = $2, customer_id = $3 WHERE id = $4",
		a.Username, a.Password, a.CustomerID, a.ID,
	)
	if err != nil {
		return mapErr(accountConstraintErr(fmt.Errorf("failed to update customer account: %w", err)))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("customer account", a.ID)
	}
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, "DELETE FROM customer_accounts WHERE id = $1", id)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete customer account: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if affected == 0 {
		return notFound("customer account", id)
	}
	return nil
}

func (r *accountRepo) FindAll(ctx context.Context) ([]entity.CustomerAccount, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx,
		"SELECT id, username, password, customer_id FROM customer_accounts ORDER BY id")
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to query customer accounts: %w", err))
	}
	defer rows.Close()

	var accounts []entity.CustomerAccount
	for rows.Next() {
		var a entity.CustomerAccount
		if err := rows.Scan(&a.ID, &a.Username, &a.Password, &a.CustomerID); err != nil {
			return nil, mapErr(fmt.Errorf("failed to scan customer account: %w", err))
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating account rows: %w", err))
	}
	return accounts, nil
}

// accountConstraintErr turns driver constraint violations into the
// validation taxonomy: duplicate usernames and dangling customer ids are
// caller mistakes, not server faults.
func accountConstraintErr(err error) error {
	if isUniqueViolation(err) {
		return entity.Validation("username", "is already taken")
	}
	if isForeignKeyViolation(err) {
		return entity.Validation("customer_id", "references an unknown customer")
	}
	return err
}
