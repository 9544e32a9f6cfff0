package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"gopkg.in/yaml.v3"
)

type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

type SeedCategory struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type SeedProduct struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	Price         float64   `yaml:"price"`
	DiscountPrice *float64  `yaml:"discount_price"`
	Images        []string  `yaml:"images"`
	Category      string    `yaml:"category"`
	Tags          []string  `yaml:"tags"`
	Colors        []string  `yaml:"colors"`
	Sizes         []string  `yaml:"sizes"`
	Materials     []string  `yaml:"materials"`
	InStock       bool      `yaml:"in_stock"`
	Featured      bool      `yaml:"featured"`
	Rating        float64   `yaml:"rating"`
	ReviewCount   int       `yaml:"review_count"`
	CreatedAt     time.Time `yaml:"created_at"`
}

func (c SeedCategory) toDomain() *domain.Category {
	return &domain.Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
	}
}

func (p SeedProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        p.Images,
		Category:      p.Category,
		Tags:          p.Tags,
		Colors:        p.Colors,
		Sizes:         p.Sizes,
		Materials:     p.Materials,
		InStock:       p.InStock,
		Featured:      p.Featured,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt.UTC(),
	}
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML seed. Every entry must have an ID.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for _, c := range seed.Categories {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: seed category %q has no id", domain.ErrValidation, c.Name)
		}
		if err := c.toDomain().Validate(); err != nil {
			return nil, fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, p := range seed.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: seed product %q has no id", domain.ErrValidation, p.Name)
		}
		if err := p.toDomain().Validate(); err != nil {
			return nil, fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return &seed, nil
}

// ApplySeed inserts the seed entries that are not stored yet and reports how
// many of each were added. Existing entries are left as they are.
func ApplySeed(ctx context.Context, store Store, seed *Seed) (categories, products int, err error) {
	for _, c := range seed.Categories {
		_, err := store.GetCategory(ctx, c.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return categories, products, err
		}
		if err := store.CreateCategory(ctx, c.toDomain()); err != nil {
			return categories, products, fmt.Errorf("seed category %s: %w", c.ID, err)
		}
		categories++
	}

	for _, p := range seed.Products {
		_, err := store.GetByID(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return categories, products, err
		}
		if err := store.CreateProduct(ctx, p.toDomain()); err != nil {
			return categories, products, fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		products++
	}

	return categories, products, nil
}
