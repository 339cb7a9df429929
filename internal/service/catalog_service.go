package service

import (
	"context"

	"grocery-service/internal/models"
	"grocery-service/internal/store"
	"grocery-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles the store-owner inventory flow.
type CatalogService struct {
	stores *store.Registry
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(stores *store.Registry) *CatalogService {
	return &CatalogService{
		stores: stores,
		logger: util.GetLogger(),
	}
}

// StoreSummary describes one retail location for the store picker.
type StoreSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stores lists all retail locations.
func (s *CatalogService) Stores() []StoreSummary {
	all := s.stores.Stores()
	out := make([]StoreSummary, 0, len(all))
	for _, st := range all {
		out = append(out, StoreSummary{ID: st.ID(), Name: st.Name()})
	}
	return out
}

// GetStore returns one store summary.
func (s *CatalogService) GetStore(storeID int64) (StoreSummary, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return StoreSummary{}, err
	}
	return StoreSummary{ID: st.ID(), Name: st.Name()}, nil
}

// Products lists a store's catalog ordered by product id.
func (s *CatalogService) Products(storeID int64) ([]models.Product, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return nil, err
	}
	return st.Products(), nil
}

// AddProduct inserts a new product into a store's catalog.
func (s *CatalogService) AddProduct(ctx context.Context, storeID int64, name string, price decimal.Decimal, quantity int) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddProduct")
	defer span.End()

	st, err := s.stores.Get(storeID)
	if err != nil {
		return models.Product{}, err
	}

	product, err := st.AddProduct(name, price, quantity)
	if err != nil {
		return models.Product{}, err
	}

	util.ProductsAddedTotal.Inc()
	s.logger.Info("Product added",
		zap.Int64("store_id", storeID),
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct replaces a product's fields. An absent product id is a
// silent no-op.
func (s *CatalogService) UpdateProduct(ctx context.Context, storeID, productID int64, name string, price decimal.Decimal, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	st, err := s.stores.Get(storeID)
	if err != nil {
		return err
	}

	matched, err := st.UpdateProduct(productID, name, price, quantity)
	if err != nil {
		return err
	}
	if matched {
		util.ProductsUpdatedTotal.Inc()
		s.logger.Info("Product updated",
			zap.Int64("store_id", storeID),
			zap.Int64("product_id", productID))
	}
	return nil
}

// DeleteProduct removes a product from a store's catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, storeID, productID int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	st, err := s.stores.Get(storeID)
	if err != nil {
		return err
	}

	st.DeleteProduct(productID)

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("Product deleted",
		zap.Int64("store_id", storeID),
		zap.Int64("product_id", productID))
	return nil
}
