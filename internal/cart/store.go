package cart

import (
	"context"
	"sync"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
)

// StateVersion is bumped whenever the persisted cart layout changes.
const StateVersion = 0

// MaxQuantity caps a single line. Larger requests are clamped.
const MaxQuantity = 99

type snapshot struct {
	Items []domain.CartItem `json:"items"`
}

// Store owns one client's cart. All access goes through its methods.
type Store struct {
	mu      sync.RWMutex
	items   []domain.CartItem
	persist *state.Persister
}

// NewStore loads the cart from p. A missing or corrupt blob yields an empty cart.
func NewStore(ctx context.Context, p *state.Persister) *Store {
	s := &Store{persist: p}

	var snap snapshot
	if p.Load(ctx, &snap) {
		s.items = sanitize(snap.Items)
	}
	return s
}

// mutate applies fn under the store lock and writes the full collection
// through to storage when the scope exits.
func (s *Store) mutate(ctx context.Context, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.persist.Save(ctx, snapshot{Items: s.items})
	}()

	fn()
}

// AddItem merges item into an existing line with the same variant key, or appends it.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) {
	item.Quantity = clampQuantity(item.Quantity)

	s.mutate(ctx, func() {
		key := item.Key()
		for i := range s.items {
			if s.items[i].Key() == key {
				s.items[i].Quantity = min(s.items[i].Quantity+item.Quantity, MaxQuantity)
				return
			}
		}
		s.items = append(s.items, item)
	})
}

// RemoveItem drops every line for productID, whatever its color or size.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mutate(ctx, func() {
		kept := s.items[:0]
		for _, it := range s.items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		s.items = kept
	})
}

// UpdateQuantity sets quantity on every line for productID. Callers wanting
// quantity < 1 should call RemoveItem instead.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	quantity = clampQuantity(quantity)
	s.mutate(ctx, func() {
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items[i].Quantity = quantity
			}
		}
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func() {
		s.items = nil
	})
}

// ItemCount is the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func clampQuantity(q int) int {
	return max(1, min(q, MaxQuantity))
}

// sanitize drops lines without a product reference and clamps quantities.
func sanitize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		it.Quantity = clampQuantity(it.Quantity)
		out = append(out, it)
	}
	return out
}
