package service

import (
	"context"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/repository"
)

// QueryService serves the read-only projections. No method here has side
// effects.
type QueryService struct {
	store repository.Store
}

func NewQueryService(store repository.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) Customer(ctx context.Context, id int64) (*entity.Customer, error) {
	return s.store.Customers().Get(ctx, id)
}

func (s *QueryService) Customers(ctx context.Context) ([]entity.Customer, error) {
	return s.store.Customers().FindAll(ctx)
}

func (s *QueryService) Account(ctx context.Context, id int64) (*entity.CustomerAccount, error) {
	return s.store.Accounts().Get(ctx, id)
}

func (s *QueryService) Accounts(ctx context.Context) ([]entity.CustomerAccount, error) {
	return s.store.Accounts().FindAll(ctx)
}

func (s *QueryService) Product(ctx context.Context, id int64) (*entity.Product, error) {
	return s.store.Products().Get(ctx, id)
}

func (s *QueryService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.store.Products().FindAll(ctx)
}

// Order returns the order with its lines; each line carries the product
// snapshot as of read time.
func (s *QueryService) Order(ctx context.Context, id int64) (*entity.Order, error) {
	return s.store.Orders().Get(ctx, id)
}

func (s *QueryService) Orders(ctx context.Context) ([]entity.Order, error) {
	return s.store.Orders().FindAll(ctx)
}
