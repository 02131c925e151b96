package repositories

import (
	"context"

	"sportshop/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// GetByIDs returns the products that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes only the fields set in patch and returns the stored row.
	Update(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}
