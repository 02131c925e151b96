package services

import (
	"context"

	"sportshop/internal/models"
	"sportshop/internal/repositories"

	"go.uber.org/zap"
)

// ProductService handles business logic related to products. Reads are
// public; writes are admin only.
type ProductService struct {
	repo   repositories.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts retrieves the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, actor models.Identity, product *models.Product) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	product.ID = 0
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return nil
}

// UpdateProduct applies a partial update. This and checkout are the only
// writers of product stock.
func (s *ProductService) UpdateProduct(ctx context.Context, actor models.Identity, id uint, patch models.ProductPatch) (*models.Product, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("product updated", zap.Uint("product_id", id), zap.Int("stock", product.Stock))
	return product, nil
}

// DeleteProduct deletes a product by its ID. Cart lines pointing at it are
// skipped when carts are read.
func (s *ProductService) DeleteProduct(ctx context.Context, actor models.Identity, id uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Uint("product_id", id))
	return nil
}
