package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/repository"
	"github.com/egannguyen/go-order-management/internal/repository/sqlstore"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []entity.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() ([]string, []entity.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...), append([]entity.Event(nil), p.events...)
}

type fixture struct {
	store     repository.Store
	publisher *recordingPublisher
	customers *CustomerService
	catalog   *CatalogService
	orders    *OrderService
	queries   *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	publisher := &recordingPublisher{}
	return &fixture{
		store:     store,
		publisher: publisher,
		customers: NewCustomerService(store),
		catalog:   NewCatalogService(store, publisher),
		orders:    NewOrderService(store, publisher),
		queries:   NewQueryService(store),
	}
}

func (f *fixture) customer(t *testing.T) *entity.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(),
		&entity.Customer{Name: "A", Email: "a@x.com", Phone: "1"})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(),
		&entity.Product{Name: name, Price: price, StockQuantity: stock})
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.queries.Product(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}
