package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sportshop/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Order creation holds the product repository's write lock, so stock checks
// and decrements are serialized the way a database transaction would be.
type MockOrderRepository struct {
	products *MockProductRepository
	orders   map[uint]models.Order
	nextID   uint
	mu       sync.RWMutex

	// CreateErr, when set, makes Create fail after validation, simulating an
	// infrastructure error.
	CreateErr error
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		products: products,
		orders:   make(map[uint]models.Order),
		nextID:   1,
	}
}

// Create stores a new order and decrements stock, all or nothing.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return fmt.Errorf("failed to create order: %w", r.CreateErr)
	}
	if err := r.products.decrementStockLocked(order.Items); err != nil {
		return err
	}

	order.ID = r.nextID
	r.nextID++
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	items := make([]models.OrderItem, len(order.Items))
	for i, it := range order.Items {
		it.ID = uint(i + 1)
		it.OrderID = order.ID
		items[i] = it
	}
	order.Items = items
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, models.OrderNotFound(id)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID uint) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, o := range r.orders {
		if o.OwnedBy(userID) {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAll returns all orders, newest first.
func (r *MockOrderRepository) ListAll(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

// UpdateStatus updates the status of an order if it is still from.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id uint, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, models.OrderNotFound(id)
	}
	if order.Status != from {
		return nil, fmt.Errorf("%w: order %d is no longer %s", models.ErrInvalidTransition, id, from)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return &order, nil
}

// Count returns the number of stored orders.
func (r *MockOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
