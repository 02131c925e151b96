package repositories

import (
	"context"

	"sportshop/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListCustomers(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uint) error
}
