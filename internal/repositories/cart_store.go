package repositories

import (
	"context"

	"sportshop/internal/models"
)

// CartStore persists cart lines keyed by owner (see models.Identity.CartKey).
// Every method is atomic with respect to a single owner's cart.
type CartStore interface {
	// Lines returns the owner's lines ordered by product id.
	Lines(ctx context.Context, owner string) ([]models.CartLine, error)
	// Add increases the line's quantity by delta, creating it if needed.
	Add(ctx context.Context, owner string, productID uint, delta int) error
	// Decrement lowers the line's quantity by one and removes the line when
	// it would drop below one. A missing line is left alone.
	Decrement(ctx context.Context, owner string, productID uint) error
	// Remove deletes the line; removing a missing line is not an error.
	Remove(ctx context.Context, owner string, productID uint) error
	// Clear deletes every line of the owner.
	Clear(ctx context.Context, owner string) error
}
