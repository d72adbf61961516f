package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/service"
)

// Handler exposes the order-management API over HTTP.
type Handler struct {
	customers *service.CustomerService
	catalog   *service.CatalogService
	orders    *service.OrderService
	queries   *service.QueryService
}

func NewHandler(
	customers *service.CustomerService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	queries *service.QueryService,
) *Handler {
	return &Handler{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		queries:   queries,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /customers", h.handleCreateCustomer)
	mux.HandleFunc("GET /customers", h.handleListCustomers)
	mux.HandleFunc("GET /customers/{id}", h.handleGetCustomer)
	mux.HandleFunc("PUT /customers/{id}", h.handleUpdateCustomer)
	mux.HandleFunc("DELETE /customers/{id}", h.handleDeleteCustomer)

	mux.HandleFunc("POST /customer_accounts", h.handleCreateAccount)
	mux.HandleFunc("GET /customer_accounts", h.handleListAccounts)
	mux.HandleFunc("GET /customer_accounts/{id}", h.handleGetAccount)
	mux.HandleFunc("PUT /customer_accounts/{id}", h.handleUpdateAccount)
	mux.HandleFunc("DELETE /customer_accounts/{id}", h.handleDeleteAccount)

	mux.HandleFunc("POST /products", h.handleCreateProduct)
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("POST /products/restock", h.handleRestockProduct)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("PUT /products/{id}", h.handleUpdateProduct)
	mux.HandleFunc("DELETE /products/{id}", h.handleDeleteProduct)

	mux.HandleFunc("POST /orders", h.handlePlaceOrder)
	mux.HandleFunc("GET /orders", h.handleListOrders)
	mux.HandleFunc("GET /orders/{id}", h.handleGetOrder)
	mux.HandleFunc("PUT /orders/{id}", h.handleUpdateOrder)
	mux.HandleFunc("DELETE /orders/{id}", h.handleDeleteOrder)
	mux.HandleFunc("GET /orders/{id}/events", h.handleOrderEvents)
}

// --- Customers ---

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.customers.CreateCustomer(r.Context(), &entity.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.queries.Customers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyAsList(customers))
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.queries.Customer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.customers.UpdateCustomer(r.Context(), &entity.Customer{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "customer removed"})
}

// --- Customer accounts ---

type accountRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	CustomerID int64  `json:"customer_id"`
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.customers.CreateAccount(r.Context(), &entity.CustomerAccount{
		Username:   req.Username,
		Password:   req.Password,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.queries.Accounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyAsList(accounts))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := h.queries.Account(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.customers.UpdateAccount(r.Context(), &entity.CustomerAccount{
		ID:         id,
		Username:   req.Username,
		Password:   req.Password,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.customers.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "customer account removed"})
}

// --- Products ---

// productRequest uses pointers for the numeric fields so that an absent
// field is distinguishable from an explicit zero.
type productRequest struct {
	Name          string   `json:"name"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
}

func (req *productRequest) toEntity(id int64) (*entity.Product, error) {
	v := entity.NewValidationError()
	if req.Price == nil {
		v.Add("price", "is required")
	}
	if req.StockQuantity == nil {
		v.Add("stock_quantity", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return &entity.Product{
		ID:            id,
		Name:          req.Name,
		Price:         *req.Price,
		StockQuantity: *req.StockQuantity,
	}, nil
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := req.toEntity(0)
	if err == nil {
		product, err = h.catalog.CreateProduct(r.Context(), product)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyAsList(products))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.queries.Product(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := req.toEntity(id)
	if err == nil {
		product, err = h.catalog.UpdateProduct(r.Context(), product)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product removed"})
}

type restockRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleRestockProduct(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.catalog.Restock(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// --- Orders ---

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var cmd entity.PlaceOrder
	if !decodeJSON(w, r, &cmd) {
		return
	}
	order, err := h.orders.PlaceOrder(r.Context(), &cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeOrderResponse{OrderID: order.ID})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queries.Orders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(orders, func(o entity.Order, _ int) orderResponse {
		return toOrderResponse(&o)
	}))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.queries.Order(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

type orderHeaderRequest struct {
	Date                 string `json:"date"`
	ExpectedDeliveryDate string `json:"expected_delivery_date"`
	CustomerID           int64  `json:"customer_id"`
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req orderHeaderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.orders.UpdateOrder(r.Context(), &entity.Order{
		ID:                   id,
		Date:                 req.Date,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		CustomerID:           req.CustomerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order cancelled"})
}

func (h *Handler) handleOrderEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	records, err := h.orders.OrderEvents(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(rec entity.EventRecord, _ int) eventResponse {
		return toEventResponse(rec)
	}))
}

// pathID parses the {id} segment. A non-numeric id cannot resolve to
// anything, so it reads as not found.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return 0, false
	}
	return id, true
}

// emptyAsList keeps empty collections rendering as [] instead of null.
func emptyAsList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// --- Response shapes ---

type messageResponse struct {
	Message string `json:"message"`
}

type placeOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

type orderLineResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *entity.Product `json:"product"`
}

type orderResponse struct {
	ID                   int64               `json:"id"`
	Date                 string              `json:"date"`
	ExpectedDeliveryDate string              `json:"expected_delivery_date"`
	CustomerID           int64               `json:"customer_id"`
	TotalPrice           float64             `json:"total_price"`
	Lines                []orderLineResponse `json:"lines"`
	CreatedAt            time.Time           `json:"created_at"`
}

func toOrderResponse(o *entity.Order) orderResponse {
	return orderResponse{
		ID:                   o.ID,
		Date:                 o.Date,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		CustomerID:           o.CustomerID,
		TotalPrice:           o.TotalPrice(),
		CreatedAt:            o.CreatedAt,
		Lines: lo.Map(o.Lines, func(l entity.OrderLine, _ int) orderLineResponse {
			return orderLineResponse{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Product:   l.Product,
			}
		}),
	}
}

type eventResponse struct {
	ID        int64           `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func toEventResponse(rec entity.EventRecord) eventResponse {
	return eventResponse{
		ID:        rec.ID,
		EventType: rec.EventType,
		Payload:   json.RawMessage(rec.Payload),
		CreatedAt: rec.CreatedAt,
	}
}
