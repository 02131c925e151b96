package repositories

import (
	"context"
	"sort"
	"sync"

	"sportshop/internal/models"
)

// MemoryCartStore keeps carts in process memory. Carts are lost on restart
// and invisible to other instances, so it is meant for development and
// tests only.
type MemoryCartStore struct {
	carts map[string]map[uint]int
	mu    sync.Mutex
}

// NewMemoryCartStore creates a new instance of MemoryCartStore.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]map[uint]int)}
}

func (s *MemoryCartStore) Lines(_ context.Context, owner string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[owner]
	lines := make([]models.CartLine, 0, len(cart))
	for pid, qty := range cart {
		lines = append(lines, models.CartLine{Owner: owner, ProductID: pid, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (s *MemoryCartStore) Add(_ context.Context, owner string, productID uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[owner]
	if !ok {
		cart = make(map[uint]int)
		s.carts[owner] = cart
	}
	cart[productID] += delta
	if cart[productID] < 1 {
		delete(cart, productID)
	}
	return nil
}

func (s *MemoryCartStore) Decrement(_ context.Context, owner string, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[owner]
	qty, ok := cart[productID]
	if !ok {
		return nil
	}
	if qty <= 1 {
		delete(cart, productID)
		return nil
	}
	cart[productID] = qty - 1
	return nil
}

func (s *MemoryCartStore) Remove(_ context.Context, owner string, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts[owner], productID)
	return nil
}

func (s *MemoryCartStore) Clear(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, owner)
	return nil
}
