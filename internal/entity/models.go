package entity

import (
	"time"
)

// DateLayout is the wire format for order dates.
const DateLayout = "2006-01-02"

// Customer is a registered customer. A customer owns zero or more orders
// and at most one account.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate checks required fields, collecting per-field messages.
func (c *Customer) Validate() error {
	v := NewValidationError()
	if c.Name == "" {
		v.Add("name", "is required")
	}
	if c.Email == "" {
		v.Add("email", "is required")
	}
	if c.Phone == "" {
		v.Add("phone", "is required")
	}
	return v.OrNil()
}

// CustomerAccount is the login account owned by a customer.
// Passwords are stored as given; hashing is out of scope here.
type CustomerAccount struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	CustomerID int64  `json:"customer_id"`
}

func (a *CustomerAccount) Validate() error {
	v := NewValidationError()
	if a.Username == "" {
		v.Add("username", "is required")
	}
	if a.Password == "" {
		v.Add("password", "is required")
	}
	if a.CustomerID <= 0 {
		v.Add("customer_id", "is required")
	}
	return v.OrNil()
}

// Product is a catalog entry. StockQuantity is current on-hand inventory
// and is never negative.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

func (p *Product) Validate() error {
	v := NewValidationError()
	if p.Name == "" {
		v.Add("name", "is required")
	}
	if p.Price < 0 {
		v.Add("price", "must not be negative")
	}
	if p.StockQuantity < 0 {
		v.Add("stock_quantity", "must not be negative")
	}
	return v.OrNil()
}

// Order is a placed order together with its lines. The order and its lines
// form one consistency boundary: they are created atomically and deleting
// the order deletes the lines.
type Order struct {
	ID                   int64       `json:"id"`
	Date                 string      `json:"date"`
	ExpectedDeliveryDate string      `json:"expected_delivery_date"`
	CustomerID           int64       `json:"customer_id"`
	Lines                []OrderLine `json:"lines"`
	CreatedAt            time.Time   `json:"created_at"`
}

// ValidateHeader checks the order's own fields, not its lines.
func (o *Order) ValidateHeader() error {
	v := NewValidationError()
	date, err := time.Parse(DateLayout, o.Date)
	if err != nil {
		v.Add("date", "must be a date in YYYY-MM-DD format")
	}
	delivery, err := time.Parse(DateLayout, o.ExpectedDeliveryDate)
	if err != nil {
		v.Add("expected_delivery_date", "must be a date in YYYY-MM-DD format")
	} else if v.Empty() && delivery.Before(date) {
		v.Add("expected_delivery_date", "must not be before the order date")
	}
	if o.CustomerID <= 0 {
		v.Add("customer_id", "is required")
	}
	return v.OrNil()
}

// TotalPrice sums quantity times the product price over all lines.
// Lines without a loaded product snapshot contribute nothing.
func (o *Order) TotalPrice() float64 {
	var total float64
	for _, l := range o.Lines {
		if l.Product != nil {
			total += l.Product.Price * float64(l.Quantity)
		}
	}
	return total
}

// OrderLine says "this many units of this product in this order".
// Its identity is (OrderID, ProductID). Product carries the product
// snapshot on reads and is nil otherwise.
type OrderLine struct {
	OrderID   int64    `json:"-"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// --- Commands ---

// PlaceOrder is the candidate order handed to the placement service.
type PlaceOrder struct {
	CustomerID           int64            `json:"customer_id"`
	Date                 string           `json:"date"`
	ExpectedDeliveryDate string           `json:"expected_delivery_date"`
	Lines                []PlaceOrderLine `json:"products"`
}

// PlaceOrderLine is one requested (product, quantity) pair.
type PlaceOrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate rejects empty orders, non-positive quantities, duplicate
// products and malformed dates before any store access happens.
func (cmd *PlaceOrder) Validate() error {
	v := NewValidationError()
	header := Order{
		Date:                 cmd.Date,
		ExpectedDeliveryDate: cmd.ExpectedDeliveryDate,
		CustomerID:           cmd.CustomerID,
	}
	if err := header.ValidateHeader(); err != nil {
		if ve := AsValidation(err); ve != nil {
			v.Merge(ve)
		}
	}
	if len(cmd.Lines) == 0 {
		v.Add("products", "must contain at least one line")
	}
	seen := make(map[int64]bool, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if line.Quantity <= 0 {
			v.Add("products", "line quantities must be positive")
		}
		if seen[line.ProductID] {
			v.Add("products", "duplicate product in order lines")
		}
		seen[line.ProductID] = true
	}
	return v.OrNil()
}
