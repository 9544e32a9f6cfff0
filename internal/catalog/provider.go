package catalog

import (
	"context"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
)

// Provider is the read side of the catalog. Lookups of unknown IDs return domain.ErrNotFound.
type Provider interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	ListFeatured(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)

	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// Mutator is the write side. It performs no authorization or validation; see Admin.
type Mutator interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type Store interface {
	Provider
	Mutator
}

// ReviewStore persists product reviews. AddReview also refreshes the product's
// rating and review count.
type ReviewStore interface {
	ListReviews(ctx context.Context, productID string) ([]*domain.Review, error)
	AddReview(ctx context.Context, r *domain.Review) error
}
