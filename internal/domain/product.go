package domain

import (
	"fmt"
	"strings"
	"time"
)

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Images        []string  `json:"images"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Colors        []string  `json:"colors,omitempty"`
	Sizes         []string  `json:"sizes,omitempty"`
	Materials     []string  `json:"materials,omitempty"`
	InStock       bool      `json:"in_stock"`
	Featured      bool      `json:"featured"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// EffectivePrice is the discount price when one is set, otherwise the base price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(p.Description) == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	case p.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", ErrValidation)
	case p.DiscountPrice != nil && *p.DiscountPrice < 0:
		return fmt.Errorf("%w: discount price must be non-negative", ErrValidation)
	case p.DiscountPrice != nil && *p.DiscountPrice > p.Price:
		return fmt.Errorf("%w: discount price must not exceed price", ErrValidation)
	case len(p.Images) == 0:
		return fmt.Errorf("%w: at least one image is required", ErrValidation)
	case strings.TrimSpace(p.Category) == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case p.Rating < 0 || p.Rating > MaxRating:
		return fmt.Errorf("%w: rating must be between 0 and %v", ErrValidation, MaxRating)
	case p.ReviewCount < 0:
		return fmt.Errorf("%w: review count must be non-negative", ErrValidation)
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("%w: image reference must not be empty", ErrValidation)
		}
	}
	return nil
}

// HasTag reports whether any tag contains sub, ignoring case. sub must already be lower-cased.
func (p *Product) HasTag(sub string) bool {
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), sub) {
			return true
		}
	}
	return false
}
