package repositories

import (
	"context"

	"sportshop/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts order and order.Items and decrements the stock of every
	// purchased product as one unit. A decrement that would make stock
	// negative aborts everything with a *models.StockError.
	Create(ctx context.Context, order *models.Order) error
	// GetByID returns the order with its items.
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus moves an order from one status to another. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (*models.Order, error)
	// Deletion of orders is not supported; orders are kept for accounting.
}

// StatsRepository computes dashboard aggregates.
type StatsRepository interface {
	Stats(ctx context.Context) (*models.Stats, error)
}
