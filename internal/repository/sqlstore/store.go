package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/repository"
)

// querier is implemented by both *sql.DB and *sql.Tx, so every repository
// method works unchanged inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on database/sql.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Customers() repository.CustomerRepository {
	return &customerRepo{q: s.db, s: s}
}

func (s *Store) Accounts() repository.AccountRepository {
	return &accountRepo{q: s.db, s: s}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{q: s.db, s: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{q: s.db, s: s}
}

func (s *Store) Events() repository.EventLog {
	return &eventLog{q: s.db, s: s}
}

// BeginTx starts a transaction scoping a multi-entity unit of work.
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	return &storeTx{tx: tx, s: s}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// opCtx bounds a single store operation with the configured timeout.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

type storeTx struct {
	tx *sql.Tx
	s  *Store
}

var _ repository.Tx = (*storeTx)(nil)

func (t *storeTx) Customers() repository.CustomerRepository {
	return &customerRepo{q: t.tx, s: t.s}
}

func (t *storeTx) Accounts() repository.AccountRepository {
	return &accountRepo{q: t.tx, s: t.s}
}

func (t *storeTx) Products() repository.ProductRepository {
	return &productRepo{q: t.tx, s: t.s}
}

func (t *storeTx) Orders() repository.OrderRepository {
	return &orderRepo{q: t.tx, s: t.s}
}

func (t *storeTx) Events() repository.EventLog {
	return &eventLog{q: t.tx, s: t.s}
}

func (t *storeTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return mapErr(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (t *storeTx) Rollback() error {
	return t.tx.Rollback()
}

// mapErr translates infrastructure failures into the Unavailable taxonomy.
// Domain errors pass through untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) {
		return &entity.UnavailableError{Err: err}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func notFound(entityName string, id int64) error {
	return &entity.NotFoundError{Entity: entityName, ID: id}
}
