package service

import (
	"context"
	"log/slog"

	"github.com/egannguyen/go-order-management/internal/entity"
	"github.com/egannguyen/go-order-management/internal/messaging"
	"github.com/egannguyen/go-order-management/internal/repository"
)

// CatalogService owns products and their stock invariants.
type CatalogService struct {
	store     repository.Store
	publisher messaging.Publisher
}

func NewCatalogService(store repository.Store, publisher messaging.Publisher) *CatalogService {
	return &CatalogService{store: store, publisher: publisher}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("Product created", "product_id", p.ID, "stock", p.StockQuantity)
	return p, nil
}

// UpdateProduct fully replaces the product's mutable fields, including
// stock_quantity.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Products().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.Products().Delete(ctx, id)
}

// Restock adds quantity to the product's stock and records the change in
// the event log, in one transaction.
func (s *CatalogService) Restock(ctx context.Context, id int64, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, entity.Validation("quantity", "must be positive")
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	product, err := tx.Products().Restock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	event := entity.ProductRestocked{
		ProductID: id,
		Quantity:  quantity,
		NewStock:  product.StockQuantity,
	}
	if err := tx.Events().Append(ctx, entity.ProductStream(id), event); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishEvent(ctx, TopicCatalogRestocked, entity.ProductStream(id), event); err != nil {
		slog.Error("Failed to publish event", "topic", TopicCatalogRestocked, "event", event.EventType(), "err", err)
	}
	slog.Info("Product restocked", "product_id", id, "quantity", quantity, "new_stock", product.StockQuantity)
	return product, nil
}
