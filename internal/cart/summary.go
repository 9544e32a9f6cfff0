package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductLookup resolves cart lines against the catalog.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Line struct {
	Item      domain.CartItem `json:"item"`
	Product   *domain.Product `json:"product"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Summary struct {
	Lines     []Line          `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Summarize prices every line at the product's effective price. Lines whose
// product no longer resolves are left out of the summary.
func (s *Store) Summarize(ctx context.Context, products ProductLookup) (*Summary, error) {
	items := s.Items()

	summary := &Summary{
		Lines:    make([]Line, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	for _, it := range items {
		p, err := products.GetByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", it.ProductID, err)
		}

		unit := decimal.NewFromFloat(p.EffectivePrice())
		total := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))

		summary.Lines = append(summary.Lines, Line{
			Item:      it,
			Product:   p,
			UnitPrice: unit,
			LineTotal: total,
		})
		summary.ItemCount += it.Quantity
		summary.Subtotal = summary.Subtotal.Add(total)
	}
	return summary, nil
}
