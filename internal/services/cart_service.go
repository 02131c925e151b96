package services

import (
	"context"
	"fmt"

	"sportshop/internal/models"
	"sportshop/internal/pricing"
	"sportshop/internal/repositories"

	"go.uber.org/zap"
)

// CartService resolves and mutates the cart of a guest session or a user.
// Mutations of one identity's cart are serialized.
type CartService struct {
	products repositories.ProductRepository
	store    repositories.CartStore
	locks    *keyedMutex
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(products repositories.ProductRepository, store repositories.CartStore, logger *zap.Logger) *CartService {
	return &CartService{
		products: products,
		store:    store,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// GetCart returns the identity's cart joined with live product data. Lines
// whose product has been deleted are skipped.
func (s *CartService) GetCart(ctx context.Context, id models.Identity) ([]models.CartItem, error) {
	return s.load(ctx, id.CartKey())
}

// Summary returns the cart with subtotal, shipping and total.
func (s *CartService) Summary(ctx context.Context, id models.Identity) (models.CartSummary, error) {
	items, err := s.GetCart(ctx, id)
	if err != nil {
		return models.CartSummary{}, err
	}
	return pricing.Summarize(items), nil
}

// AddToCart adds quantity units of a product, summing with an existing line.
func (s *CartService) AddToCart(ctx context.Context, id models.Identity, productID uint, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &models.StockError{
			Kind:        models.ErrOutOfStock,
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	key := id.CartKey()
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.store.Add(ctx, key, productID, quantity); err != nil {
		return nil, err
	}
	s.logger.Debug("cart line added",
		zap.Stringer("identity", id), zap.Uint("product_id", productID), zap.Int("quantity", quantity))
	return s.load(ctx, key)
}

// DecrementCart lowers a line by one unit, removing it at zero.
func (s *CartService) DecrementCart(ctx context.Context, id models.Identity, productID uint) ([]models.CartItem, error) {
	key := id.CartKey()
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.store.Decrement(ctx, key, productID); err != nil {
		return nil, err
	}
	return s.load(ctx, key)
}

// RemoveFromCart deletes a line. It is idempotent.
func (s *CartService) RemoveFromCart(ctx context.Context, id models.Identity, productID uint) ([]models.CartItem, error) {
	key := id.CartKey()
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.store.Remove(ctx, key, productID); err != nil {
		return nil, err
	}
	return s.load(ctx, key)
}

// ClearCart empties the cart. It is idempotent.
func (s *CartService) ClearCart(ctx context.Context, id models.Identity) error {
	key := id.CartKey()
	unlock := s.locks.Lock(key)
	defer unlock()

	return s.store.Clear(ctx, key)
}

// MergeGuestCart moves the lines of a guest session into a user's cart,
// summing quantities, then empties the guest cart. Lines of deleted
// products are dropped.
func (s *CartService) MergeGuestCart(ctx context.Context, guest, user models.Identity) error {
	if !guest.IsGuest() || !user.IsUser() {
		return fmt.Errorf("%w: merge needs a guest source and a user target", models.ErrInvalidInput)
	}
	guestKey, userKey := guest.CartKey(), user.CartKey()

	unlockGuest := s.locks.Lock(guestKey)
	defer unlockGuest()
	lines, err := s.store.Lines(ctx, guestKey)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	existing, err := s.products.GetByIDs(ctx, productIDs(lines))
	if err != nil {
		return err
	}

	unlockUser := s.locks.Lock(userKey)
	defer unlockUser()
	for _, l := range lines {
		if _, ok := existing[l.ProductID]; !ok {
			continue
		}
		if err := s.store.Add(ctx, userKey, l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	if err := s.store.Clear(ctx, guestKey); err != nil {
		return err
	}
	s.logger.Info("guest cart merged", zap.Stringer("from", guest), zap.Stringer("to", user), zap.Int("lines", len(lines)))
	return nil
}

// lines reads the raw lines of a cart. Callers hold the cart lock.
func (s *CartService) lines(ctx context.Context, key string) ([]models.CartLine, error) {
	return s.store.Lines(ctx, key)
}

func (s *CartService) load(ctx context.Context, key string) ([]models.CartItem, error) {
	lines, err := s.store.Lines(ctx, key)
	if err != nil {
		return nil, err
	}
	products, err := s.products.GetByIDs(ctx, productIDs(lines))
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		items = append(items, models.CartItem{Product: p, Quantity: l.Quantity})
	}
	return items, nil
}

func productIDs(lines []models.CartLine) []uint {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
