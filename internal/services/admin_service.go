package services

import (
	"context"
	"fmt"

	"sportshop/internal/models"
	"sportshop/internal/repositories"

	"go.uber.org/zap"
)

// AdminService serves the customer and dashboard screens of the admin panel.
type AdminService struct {
	users  repositories.UserRepository
	stats  repositories.StatsRepository
	carts  repositories.CartStore
	logger *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(users repositories.UserRepository, stats repositories.StatsRepository, carts repositories.CartStore, logger *zap.Logger) *AdminService {
	return &AdminService{users: users, stats: stats, carts: carts, logger: logger}
}

// ListCustomers returns every non-admin user.
func (s *AdminService) ListCustomers(ctx context.Context, actor models.Identity) ([]models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// DeleteUser removes a user account and its cart. Admins cannot delete
// themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actor models.Identity, userID uint) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if userID == actor.UserID {
		return fmt.Errorf("%w: cannot delete your own account", models.ErrInvalidInput)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	cartKey := models.UserIdentity(userID, false).CartKey()
	if err := s.carts.Clear(context.WithoutCancel(ctx), cartKey); err != nil {
		s.logger.Warn("failed to clear cart of deleted user", zap.Uint("user_id", userID), zap.Error(err))
	}
	s.logger.Info("user deleted", zap.Uint("user_id", userID), zap.Uint("by", actor.UserID))
	return nil
}

// Stats returns the dashboard aggregates.
func (s *AdminService) Stats(ctx context.Context, actor models.Identity) (*models.Stats, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.stats.Stats(ctx)
}
