package service

import (
	"context"
	"log/slog"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/repository"
)

// CustomerService owns the Customer and CustomerAccount lifecycles.
type CustomerService struct {
	store repository.Store
}

func NewCustomerService(store repository.Store) *CustomerService {
	return &CustomerService{store: store}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Customers().Create(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("Customer created", "customer_id", c.ID)
	return c, nil
}

// UpdateCustomer fully replaces the customer's mutable fields.
func (s *CustomerService) UpdateCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Customers().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer refuses to delete a customer with outstanding orders.
// The customer's account, if any, goes with the customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	count, err := s.store.Orders().CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return entity.Validation("id", "customer has outstanding orders and cannot be deleted")
	}
	return s.store.Customers().Delete(ctx, id)
}

func (s *CustomerService) CreateAccount(ctx context.Context, a *entity.CustomerAccount) (*entity.CustomerAccount, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Customers().Get(ctx, a.CustomerID); err != nil {
		return nil, err
	}
	if err := s.store.Accounts().Create(ctx, a); err != nil {
		return nil, err
	}
	slog.Info("Customer account created", "account_id", a.ID, "customer_id", a.CustomerID)
	return a, nil
}

func (s *CustomerService) UpdateAccount(ctx context.Context, a *entity.CustomerAccount) (*entity.CustomerAccount, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Customers().Get(ctx, a.CustomerID); err != nil {
		return nil, err
	}
	if err := s.store.Accounts().Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CustomerService) DeleteAccount(ctx context.Context, id int64) error {
	return s.store.Accounts().Delete(ctx, id)
}
