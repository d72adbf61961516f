package repository

import (
	"context"

	"github.com/egannguyen/go-order-management/internal/entity"
)

// CustomerRepository handles persistence for Customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	Get(ctx context.Context, id int64) (*entity.Customer, error)
	Update(ctx context.Context, c *entity.Customer) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]entity.Customer, error)
}

// AccountRepository handles persistence for CustomerAccounts.
// Username uniqueness is enforced by the store and surfaces as a
// ValidationError on Create and Update.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.CustomerAccount) error
	Get(ctx context.Context, id int64) (*entity.CustomerAccount, error)
	Update(ctx context.Context, a *entity.CustomerAccount) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]entity.CustomerAccount, error)
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]entity.Product, error)
	// Restock adds quantity to the product's stock and returns the updated row.
	Restock(ctx context.Context, id int64, quantity int) (*entity.Product, error)
	// ReserveStock atomically checks stock_quantity >= quantity and decrements.
	// It is the single authority for the stock invariant under concurrent
	// callers: the check and the write are one guarded statement.
	ReserveStock(ctx context.Context, id int64, quantity int) error
}

// OrderRepository handles persistence for Orders and their lines.
type OrderRepository interface {
	// Create inserts the order header and one line per entry. It must run
	// inside a transaction when called together with stock reservation.
	Create(ctx context.Context, o *entity.Order) error
	Get(ctx context.Context, id int64) (*entity.Order, error)
	FindAll(ctx context.Context) ([]entity.Order, error)
	UpdateHeader(ctx context.Context, o *entity.Order) error
	Delete(ctx context.Context, id int64) error
	CountByCustomer(ctx context.Context, customerID int64) (int, error)
}

// EventLog appends domain events alongside the state changes that caused
// them and replays a stream for inspection.
type EventLog interface {
	Append(ctx context.Context, streamID string, event entity.Event) error
	ByStream(ctx context.Context, streamID string) ([]entity.EventRecord, error)
}

// Repositories bundles the per-entity repositories bound to one backend:
// either the shared connection pool or a single transaction.
type Repositories interface {
	Customers() CustomerRepository
	Accounts() AccountRepository
	Products() ProductRepository
	Orders() OrderRepository
	Events() EventLog
}

// Tx is an in-flight transaction. All repositories obtained from it operate
// on the same unit of work; nothing is visible until Commit.
type Tx interface {
	Repositories
	Commit() error
	Rollback() error
}

// Store is the root data-access handle.
type Store interface {
	Repositories
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}
