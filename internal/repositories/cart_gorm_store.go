package repositories

import (
	"context"
	"fmt"
	"time"

	"sportshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartStore keeps cart lines in the cart_lines table.
type GORMCartStore struct {
	db *gorm.DB
}

// NewGORMCartStore creates a new instance of GORMCartStore.
func NewGORMCartStore(db *gorm.DB) *GORMCartStore {
	return &GORMCartStore{db: db}
}

func (s *GORMCartStore) Lines(ctx context.Context, owner string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("product_id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", owner, err)
	}
	return lines, nil
}

// Add upserts the line, summing quantities on conflict.
func (s *GORMCartStore) Add(ctx context.Context, owner string, productID uint, delta int) error {
	line := models.CartLine{Owner: owner, ProductID: productID, Quantity: delta, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&line).Error
	if err != nil {
		return fmt.Errorf("failed to add product %d to cart %s: %w", productID, owner, err)
	}
	return nil
}

// Decrement lowers the quantity in place, or deletes a line at quantity one,
// inside one transaction.
func (s *GORMCartStore) Decrement(ctx context.Context, owner string, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartLine{}).
			Where("owner = ? AND product_id = ? AND quantity > 1", owner, productID).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to decrement product %d in cart %s: %w", productID, owner, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := tx.Where("owner = ? AND product_id = ?", owner, productID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("failed to remove product %d from cart %s: %w", productID, owner, err)
		}
		return nil
	})
}

func (s *GORMCartStore) Remove(ctx context.Context, owner string, productID uint) error {
	err := s.db.WithContext(ctx).Where("owner = ? AND product_id = ?", owner, productID).Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove product %d from cart %s: %w", productID, owner, err)
	}
	return nil
}

func (s *GORMCartStore) Clear(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", owner, err)
	}
	return nil
}

// PurgeStale deletes guest lines untouched since before cutoff. Guest carts
// are otherwise only dropped when the cart is cleared.
func (s *GORMCartStore) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	res := s.db.WithContext(ctx).
		Where("owner LIKE ? AND updated_at < ?", "guest:%", cutoff).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge stale guest carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
