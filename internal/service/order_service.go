package service

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/messaging"
	"github.com/egannguyen/go-order-management/internal/repository"
)

// Topics published by the order and catalog services.
const (
	TopicOrdersPlaced     = "orders.placed"
	TopicOrdersCancelled  = "orders.cancelled"
	TopicCatalogRestocked = "catalog.restocked"
)

// OrderService orchestrates order placement: validation, stock reservation
// and persistence of the order aggregate, all inside one transaction.
type OrderService struct {
	store     repository.Store
	publisher messaging.Publisher
}

func NewOrderService(store repository.Store, publisher messaging.Publisher) *OrderService {
	return &OrderService{store: store, publisher: publisher}
}

// PlaceOrder executes the placement workflow. Either every effect — stock
// decrements, the order row, its lines and the event log entry — becomes
// visible, or none does.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd *entity.PlaceOrder) (*entity.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Service: Placing order", "customer_id", cmd.CustomerID, "lines", len(cmd.Lines))

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Customers().Get(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}

	// Resolve and check every line before touching any stock, so a failing
	// line never leaves earlier lines decremented.
	for _, line := range cmd.Lines {
		product, err := tx.Products().Get(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.StockQuantity < line.Quantity {
			return nil, &entity.InsufficientStockError{
				ProductID: line.ProductID,
				Available: product.StockQuantity,
				Requested: line.Quantity,
			}
		}
	}

	// The guarded decrement is the authority under concurrency: if another
	// transaction drained the stock since the check above, the reservation
	// fails here and the whole transaction rolls back. Reserving in product-id
	// order keeps two orders listing the same products from taking row locks
	// in opposite order and deadlocking.
	reserve := append([]entity.PlaceOrderLine(nil), cmd.Lines...)
	sort.Slice(reserve, func(i, j int) bool { return reserve[i].ProductID < reserve[j].ProductID })
	for _, line := range reserve {
		if err := tx.Products().ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	order := &entity.Order{
		Date:                 cmd.Date,
		ExpectedDeliveryDate: cmd.ExpectedDeliveryDate,
		CustomerID:           cmd.CustomerID,
		CreatedAt:            time.Now(),
	}
	for _, line := range cmd.Lines {
		order.Lines = append(order.Lines, entity.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	event := entity.OrderPlaced{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Lines:      order.Lines,
		PlacedAt:   order.CreatedAt,
	}
	if err := tx.Events().Append(ctx, entity.OrderStream(order.ID), event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, TopicOrdersPlaced, order.ID, event)
	slog.Info("Order placed", "order_id", order.ID, "lines", len(order.Lines))
	return order, nil
}

// UpdateOrder replaces the order header. Lines are never touched here.
func (s *OrderService) UpdateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if err := order.ValidateHeader(); err != nil {
		return nil, err
	}
	if _, err := s.store.Customers().Get(ctx, order.CustomerID); err != nil {
		return nil, err
	}
	if err := s.store.Orders().UpdateHeader(ctx, order); err != nil {
		return nil, err
	}
	return s.store.Orders().Get(ctx, order.ID)
}

// CancelOrder deletes the order and its lines. Stock reserved by the order
// is not restored; the OrderCancelled event lets downstream consumers
// implement a restocking policy if one is ever wanted.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	event := entity.OrderCancelled{OrderID: id, CancelledAt: time.Now()}
	if err := tx.Orders().Delete(ctx, id); err != nil {
		return err
	}
	if err := tx.Events().Append(ctx, entity.OrderStream(id), event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publish(ctx, TopicOrdersCancelled, id, event)
	slog.Info("Order cancelled", "order_id", id)
	return nil
}

// OrderEvents returns the order's event stream, which survives deletion of
// the order itself.
func (s *OrderService) OrderEvents(ctx context.Context, orderID int64) ([]entity.EventRecord, error) {
	records, err := s.store.Events().ByStream(ctx, entity.OrderStream(orderID))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if _, err := s.store.Orders().Get(ctx, orderID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// publish sends the event to the broker after the transaction committed.
// The state change already happened, so a broker failure is logged rather
// than surfaced to the caller.
func (s *OrderService) publish(ctx context.Context, topic string, aggregateID int64, event entity.Event) {
	key := strconv.FormatInt(aggregateID, 10)
	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "topic", topic, "event", event.EventType(), "err", err)
	}
}
