package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sportshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository and
// StatsRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists the order, its items and the stock decrements in a single
// transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	ids := make([]uint, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
	}
	// Lock rows in id order so concurrent checkouts cannot deadlock.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id").Find(&locked).Error; err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}
		byID := make(map[uint]models.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, it := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock of product %d: %w", it.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				p := byID[it.ProductID]
				return &models.StockError{
					Kind:        models.ErrInsufficientStock,
					ProductID:   it.ProductID,
					ProductName: p.Name,
					Requested:   it.Quantity,
					Available:   p.Stock,
				}
			}
		}
		return nil
	})
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.OrderNotFound(id)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// ListAll retrieves every order, newest first.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus performs a compare-and-set on the order status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order %d is no longer %s", models.ErrInvalidTransition, id, from)
	}
	return r.GetByID(ctx, id)
}

// Stats aggregates sales figures. Cancelled orders do not count as sales.
func (r *GORMOrderRepository) Stats(ctx context.Context) (*models.Stats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.Stats{SalesByMonth: map[string]int64{}}

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := db.Model(&models.User{}).Where("is_admin = ?", false).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var sales []models.Order
	if err := db.Select("total_amount", "created_at").
		Where("status <> ?", models.OrderStatusCancelled).
		Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	for _, o := range sales {
		stats.TotalSales += o.TotalAmount
		stats.SalesByMonth[o.CreatedAt.UTC().Format("2006-01")] += o.TotalAmount
	}

	stats.PopularProducts = []models.PopularProduct{}
	err := db.Table("order_items").
		Select("order_items.product_id AS id, COALESCE(products.name, '') AS name, CAST(SUM(order_items.quantity) AS BIGINT) AS sales").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Group("order_items.product_id, products.name").
		Order("sales DESC, id").
		Limit(5).
		Scan(&stats.PopularProducts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute popular products: %w", err)
	}
	for i := range stats.PopularProducts {
		if stats.PopularProducts[i].Name == "" {
			stats.PopularProducts[i].Name = "unknown product"
		}
	}
	return stats, nil
}
