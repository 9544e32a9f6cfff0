package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
)

const StateVersion = 0

type snapshot struct {
	Items []domain.WishlistItem `json:"items"`
}

// Store holds one client's favourited product IDs with set semantics.
type Store struct {
	mu      sync.RWMutex
	items   []domain.WishlistItem
	persist *state.Persister
}

func NewStore(ctx context.Context, p *state.Persister) *Store {
	s := &Store{persist: p}

	var snap snapshot
	if p.Load(ctx, &snap) {
		s.items = dedupe(snap.Items)
	}
	return s
}

func (s *Store) mutate(ctx context.Context, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.persist.Save(ctx, snapshot{Items: s.items})
	}()

	fn()
}

func (s *Store) AddItem(ctx context.Context, productID string) {
	s.mutate(ctx, func() {
		s.add(productID)
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mutate(ctx, func() {
		s.remove(productID)
	})
}

// ToggleItem flips membership of productID and reports whether it is now in the wishlist.
func (s *Store) ToggleItem(ctx context.Context, productID string) bool {
	var added bool
	s.mutate(ctx, func() {
		if s.indexOf(productID) >= 0 {
			s.remove(productID)
			return
		}
		s.add(productID)
		added = true
	})
	return added
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func() {
		s.items = nil
	})
}

func (s *Store) Items() []domain.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WishlistItem, len(s.items))
	copy(out, s.items)
	return out
}

// ProductLookup resolves wishlist entries against the catalog.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Products resolves every entry, in wishlist order, skipping products that no longer exist.
func (s *Store) Products(ctx context.Context, products ProductLookup) ([]*domain.Product, error) {
	items := s.Items()

	out := make([]*domain.Product, 0, len(items))
	for _, it := range items {
		p, err := products.GetByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", it.ProductID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// indexOf is a linear scan; wishlists are small.
func (s *Store) indexOf(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) add(productID string) {
	if s.indexOf(productID) >= 0 {
		return
	}
	s.items = append(s.items, domain.WishlistItem{ProductID: productID})
}

func (s *Store) remove(productID string) {
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
}

func dedupe(items []domain.WishlistItem) []domain.WishlistItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.WishlistItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it)
	}
	return out
}
