package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-order-management/internal/messaging"
	"github.com/egannguyen/go-order-management/internal/repository/sqlstore"
	"github.com/egannguyen/go-order-management/internal/service"
)

func newTestServer(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	publisher := messaging.NopPublisher{}
	handler := NewHandler(
		service.NewCustomerService(store),
		service.NewCatalogService(store, publisher),
		service.NewOrderService(store, publisher),
		service.NewQueryService(store),
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/customers", map[string]any{
		"name": "John", "email": "john@x.com", "phone": "555",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["id"])

	rec = doJSON(t, mux, http.MethodPost, "/products", map[string]any{
		"name": "Pen", "price": 2.5, "stock_quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["id"])

	rec = doJSON(t, mux, http.MethodPost, "/orders", map[string]any{
		"date":                   "2024-05-01",
		"expected_delivery_date": "2024-05-08",
		"customer_id":            1,
		"products":               []map[string]any{{"product_id": 1, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["order_id"])

	rec = doJSON(t, mux, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeBody(t, rec)["stock_quantity"])

	rec = doJSON(t, mux, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decodeBody(t, rec)
	assert.EqualValues(t, 1, order["customer_id"])
	assert.InDelta(t, 2.5, order["total_price"], 0.001)
	lines, ok := order["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.EqualValues(t, 1, line["product_id"])
	assert.EqualValues(t, 1, line["quantity"])
	require.NotNil(t, line["product"])
	assert.Equal(t, "Pen", line["product"].(map[string]any)["name"])

	rec = doJSON(t, mux, http.MethodGet, "/orders/1/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "OrderPlaced", events[0]["event_type"])

	rec = doJSON(t, mux, http.MethodDelete, "/orders/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order cancelled", decodeBody(t, rec)["message"])

	rec = doJSON(t, mux, http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Cancelling never restores stock.
	rec = doJSON(t, mux, http.MethodGet, "/products/1", nil)
	assert.EqualValues(t, 2, decodeBody(t, rec)["stock_quantity"])
}

func TestPlaceOrderInsufficientStockOverHTTP(t *testing.T) {
	mux := newTestServer(t)

	doJSON(t, mux, http.MethodPost, "/customers", map[string]any{
		"name": "John", "email": "john@x.com", "phone": "555",
	})
	doJSON(t, mux, http.MethodPost, "/products", map[string]any{
		"name": "Pen", "price": 2.5, "stock_quantity": 1,
	})

	rec := doJSON(t, mux, http.MethodPost, "/orders", map[string]any{
		"date":                   "2024-05-01",
		"expected_delivery_date": "2024-05-08",
		"customer_id":            1,
		"products":               []map[string]any{{"product_id": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["product_id"])
	assert.Contains(t, body["error"], "insufficient stock")

	// No order was recorded.
	rec = doJSON(t, mux, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestValidationResponses(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/customers", map[string]any{"name": "John"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "phone")

	t.Run("product fields required", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/products", map[string]any{"name": "Pen"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "price")
		assert.Contains(t, errs, "stock_quantity")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid request body", decodeBody(t, rec)["error"])
	})
}

func TestNotFoundResponses(t *testing.T) {
	mux := newTestServer(t)

	for _, path := range []string{"/customers/99", "/products/99", "/orders/99", "/customer_accounts/99"} {
		rec := doJSON(t, mux, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	t.Run("non-numeric id", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/customers/abc", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEmptyCollectionsRenderAsLists(t *testing.T) {
	mux := newTestServer(t)

	for _, path := range []string{"/customers", "/customer_accounts", "/products", "/orders"} {
		rec := doJSON(t, mux, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
	}
}

func TestRestockOverHTTP(t *testing.T) {
	mux := newTestServer(t)

	doJSON(t, mux, http.MethodPost, "/products", map[string]any{
		"name": "Pen", "price": 2.5, "stock_quantity": 3,
	})

	rec := doJSON(t, mux, http.MethodPost, "/products/restock", map[string]any{
		"product_id": 1, "quantity": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decodeBody(t, rec)["stock_quantity"])

	rec = doJSON(t, mux, http.MethodPost, "/products/restock", map[string]any{
		"product_id": 1, "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreTimeoutRendersAs503(t *testing.T) {
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:", time.Nanosecond)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	publisher := messaging.NopPublisher{}
	handler := NewHandler(
		service.NewCustomerService(store),
		service.NewCatalogService(store, publisher),
		service.NewOrderService(store, publisher),
		service.NewQueryService(store),
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service unavailable", decodeBody(t, rec)["error"])
}

func TestUnhandledErrorRendersAs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
}

func TestAccountsOverHTTP(t *testing.T) {
	mux := newTestServer(t)

	doJSON(t, mux, http.MethodPost, "/customers", map[string]any{
		"name": "John", "email": "john@x.com", "phone": "555",
	})

	rec := doJSON(t, mux, http.MethodPost, "/customer_accounts", map[string]any{
		"username": "john", "password": "pw", "customer_id": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["id"])

	rec = doJSON(t, mux, http.MethodPost, "/customer_accounts", map[string]any{
		"username": "jane", "password": "pw", "customer_id": 42,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/customer_accounts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer account removed", decodeBody(t, rec)["message"])
}
