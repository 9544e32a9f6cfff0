package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authorizer is the caller of an admin operation.
type Authorizer interface {
	IsAdmin() bool
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.CatalogEvent) error
}

// Admin is the only write path for products and categories. Authorization is
// checked before validation, and validation before any mutation.
type Admin struct {
	hooks
	store Store
}

func NewAdmin(store Store, logger *zap.Logger, opts ...Option) *Admin {
	return &Admin{
		hooks: newHooks(logger, opts),
		store: store,
	}
}

func (a *Admin) CreateProduct(ctx context.Context, who Authorizer, p domain.Product) (*domain.Product, error) {
	if err := authorize(who); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := a.requireCategory(ctx, p.Category); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if err := a.requireAbsentProduct(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = a.now().UTC()
	}

	if err := a.store.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	a.changed(ctx, domain.EventProductCreated, p.ID)
	return &p, nil
}

// UpdateProduct replaces the product stored under id. A zero CreatedAt keeps the stored one.
func (a *Admin) UpdateProduct(ctx context.Context, who Authorizer, id string, p domain.Product) (*domain.Product, error) {
	if err := authorize(who); err != nil {
		return nil, err
	}
	p.ID = id
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.requireCategory(ctx, p.Category); err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}

	if err := a.store.UpdateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	a.changed(ctx, domain.EventProductUpdated, p.ID)
	return &p, nil
}

func (a *Admin) DeleteProduct(ctx context.Context, who Authorizer, id string) error {
	if err := authorize(who); err != nil {
		return err
	}
	if err := a.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	a.changed(ctx, domain.EventProductDeleted, id)
	return nil
}

func (a *Admin) CreateCategory(ctx context.Context, who Authorizer, c domain.Category) (*domain.Category, error) {
	if err := authorize(who); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := a.requireFreeSlug(ctx, c.Slug, ""); err != nil {
		return nil, err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if _, err := a.store.GetCategory(ctx, c.ID); err == nil {
		return nil, fmt.Errorf("%w: category %s already exists", domain.ErrValidation, c.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := a.store.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	a.changed(ctx, domain.EventCategoryCreated, c.ID)
	return &c, nil
}

func (a *Admin) UpdateCategory(ctx context.Context, who Authorizer, id string, c domain.Category) (*domain.Category, error) {
	if err := authorize(who); err != nil {
		return nil, err
	}
	c.ID = id
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := a.store.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	if err := a.requireFreeSlug(ctx, c.Slug, id); err != nil {
		return nil, err
	}

	if err := a.store.UpdateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	a.changed(ctx, domain.EventCategoryUpdated, c.ID)
	return &c, nil
}

// DeleteCategory leaves the category's products in place.
func (a *Admin) DeleteCategory(ctx context.Context, who Authorizer, id string) error {
	if err := authorize(who); err != nil {
		return err
	}
	if err := a.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	a.changed(ctx, domain.EventCategoryDeleted, id)
	return nil
}

func authorize(who Authorizer) error {
	if who == nil || !who.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (a *Admin) requireCategory(ctx context.Context, id string) error {
	_, err := a.store.GetCategory(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, id)
	}
	return err
}

func (a *Admin) requireAbsentProduct(ctx context.Context, id string) error {
	_, err := a.store.GetByID(ctx, id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: product %s already exists", domain.ErrValidation, id)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (a *Admin) requireFreeSlug(ctx context.Context, slug, ownerID string) error {
	existing, err := a.store.GetCategoryBySlug(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return fmt.Errorf("%w: slug %q is already used", domain.ErrValidation, slug)
	default:
		return nil
	}
}
