package entity

import (
	"strconv"
	"time"
)

// Event is a domain event appended to the event log and published to the
// message broker.
type Event interface {
	EventType() string
}

// EventRecord is a persisted event log row.
type EventRecord struct {
	ID        int64     `json:"id"`
	StreamID  string    `json:"stream_id"`
	EventType string    `json:"event_type"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderPlaced is emitted when an order and its lines are committed.
type OrderPlaced struct {
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	Lines      []OrderLine `json:"lines"`
	PlacedAt   time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderCancelled is emitted when an order is deleted. Stock reserved by the
// order is not restored; downstream consumers may implement that policy.
type OrderCancelled struct {
	OrderID     int64     `json:"order_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (e OrderCancelled) EventType() string { return "OrderCancelled" }

// ProductRestocked is emitted when stock is added to a product.
type ProductRestocked struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	NewStock  int   `json:"new_stock"`
}

func (e ProductRestocked) EventType() string { return "ProductRestocked" }

// OrderStream names the event stream for an order id.
func OrderStream(orderID int64) string {
	return streamName("order", orderID)
}

// ProductStream names the event stream for a product id.
func ProductStream(productID int64) string {
	return streamName("product", productID)
}

func streamName(kind string, id int64) string {
	return kind + "-" + strconv.FormatInt(id, 10)
}
