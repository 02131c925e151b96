package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportshop/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves the products matching filter, ordered by id.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Subcategory != "" {
		q = q.Where("subcategory = ?", filter.Subcategory)
	}
	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}

	var products []models.Product
	if err := q.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ProductNotFound(id)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetByIDs retrieves the existing products among ids.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the set fields of patch and reloads the product. Columns
// outside the patch are never written.
func (r *GORMProductRepository) Update(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ProductNotFound(id)
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ProductNotFound(id)
	}
	return nil
}
