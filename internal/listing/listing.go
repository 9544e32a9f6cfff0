// Package listing derives ordered product views from a catalog snapshot.
// Everything here is a pure function of its inputs.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
)

type SortKey string

const (
	SortFeatured     SortKey = "featured"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortNewest       SortKey = "newest"
	SortRating       SortKey = "rating"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	defaultMinPrice = 0
	defaultMaxPrice = 15000
)

// ParseSortKey maps a query value to a SortKey. An empty value selects SortFeatured.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.TrimSpace(s)); key {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceLowHigh, SortPriceHighLow, SortNewest, SortRating:
		return key, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, s)
	}
}

// PriceRange bounds the effective price, both ends inclusive.
type PriceRange struct {
	Min float64
	Max float64
}

// DefaultPriceRange is the storefront filter panel's initial range.
func DefaultPriceRange() *PriceRange {
	return &PriceRange{Min: defaultMinPrice, Max: defaultMaxPrice}
}

func (r *PriceRange) contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Criteria are combined with AND. Zero values match everything.
type Criteria struct {
	Category  string
	Price     *PriceRange
	MinRating float64
	Query     string
}

func (c Criteria) Match(p *domain.Product) bool {
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Price != nil && !c.Price.contains(p.EffectivePrice()) {
		return false
	}
	if c.MinRating > 0 && p.Rating < c.MinRating {
		return false
	}
	if c.Query != "" && !MatchesQuery(p, c.Query) {
		return false
	}
	return true
}

// MatchesQuery is a case-insensitive substring match against name, description or any tag.
func MatchesQuery(p *domain.Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		p.HasTag(q)
}

// Filter keeps the products matching c in their original order.
func Filter(products []*domain.Product, c Criteria) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders products in place. Equal elements keep their relative order.
func Sort(products []*domain.Product, key SortKey) {
	switch key {
	case SortPriceLowHigh:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
		})
	case SortPriceHighLow:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return cmp.Compare(b.EffectivePrice(), a.EffectivePrice())
		})
	case SortNewest:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortRating:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	}
}

// Apply filters then sorts. The input slice is left untouched and the result
// is never nil, so an empty match renders as an empty list.
func Apply(products []*domain.Product, c Criteria, key SortKey) []*domain.Product {
	out := Filter(products, c)
	Sort(out, key)
	return out
}
