package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-order-management/internal/entity"
)

// newTestStore opens an in-memory SQLite store. The single-connection pool
// keeps the memory database alive for the test's lifetime.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(DriverSQLite, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestQueryTimeoutSurfacesUnavailable(t *testing.T) {
	store, err := Open(DriverSQLite, ":memory:", time.Nanosecond)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Products().FindAll(context.Background())
	require.Error(t, err)
	assert.True(t, entity.IsUnavailable(err))

	_, err = store.Customers().Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, entity.IsUnavailable(err))
}

func createCustomer(t *testing.T, store *Store) *entity.Customer {
	t.Helper()
	c := &entity.Customer{Name: "A", Email: "a@x.com", Phone: "1"}
	require.NoError(t, store.Customers().Create(context.Background(), c))
	return c
}

func createProduct(t *testing.T, store *Store, name string, price float64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: price, StockQuantity: stock}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func createOrder(t *testing.T, store *Store, customerID int64, lines []entity.OrderLine) *entity.Order {
	t.Helper()
	o := &entity.Order{
		Date:                 "2024-01-01",
		ExpectedDeliveryDate: "2024-01-05",
		CustomerID:           customerID,
		Lines:                lines,
	}
	require.NoError(t, store.Orders().Create(context.Background(), o))
	return o
}
