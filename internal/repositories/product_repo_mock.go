package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"sportshop/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It backs service tests; MockOrderRepository decrements its stock under the
// same lock, which stands in for the database transaction.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// List returns the products matching filter, ordered by id.
func (r *MockProductRepository) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Subcategory != "" && p.Subcategory != filter.Subcategory {
			continue
		}
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.ProductNotFound(id)
	}
	return &product, nil
}

// GetByIDs returns the existing products among ids.
func (r *MockProductRepository) GetByIDs(_ context.Context, ids []uint) (map[uint]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uint]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update applies patch to an existing product.
func (r *MockProductRepository) Update(_ context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, models.ProductNotFound(id)
	}
	patch.Apply(&product)
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return models.ProductNotFound(id)
	}
	delete(r.products, id)
	return nil
}

// decrementStockLocked applies every stock decrement or none. The caller
// must hold r.mu for writing.
func (r *MockProductRepository) decrementStockLocked(items []models.OrderItem) error {
	for _, it := range items {
		p, ok := r.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return &models.StockError{
				Kind:        models.ErrInsufficientStock,
				ProductID:   it.ProductID,
				ProductName: p.Name,
				Requested:   it.Quantity,
				Available:   p.Stock,
			}
		}
	}
	for _, it := range items {
		p := r.products[it.ProductID]
		p.Stock -= it.Quantity
		r.products[it.ProductID] = p
	}
	return nil
}
