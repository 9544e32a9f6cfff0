package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/cache"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cachePrefix = "catalog:"

// CachedProvider is a read-through cache in front of a Provider. Not-found
// results are never cached.
type CachedProvider struct {
	next   Provider
	cache  cache.Cache
	sfg    singleflight.Group // collapses concurrent misses per key
	gen    atomic.Uint64      // bumped by Invalidate
	logger *zap.Logger
}

func NewCachedProvider(next Provider, c cache.Cache, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  c,
		logger: logger,
	}
}

func (p *CachedProvider) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return readThrough(ctx, p, "product:"+id, func(ctx context.Context) (*domain.Product, error) {
		return p.next.GetByID(ctx, id)
	})
}

func (p *CachedProvider) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return readThrough(ctx, p, "products", p.next.ListProducts)
}

func (p *CachedProvider) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return readThrough(ctx, p, "by-category:"+categoryID, func(ctx context.Context) ([]*domain.Product, error) {
		return p.next.ListByCategory(ctx, categoryID)
	})
}

func (p *CachedProvider) ListFeatured(ctx context.Context) ([]*domain.Product, error) {
	return readThrough(ctx, p, "featured", p.next.ListFeatured)
}

func (p *CachedProvider) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	return readThrough(ctx, p, "search:"+strings.ToLower(query), func(ctx context.Context) ([]*domain.Product, error) {
		return p.next.Search(ctx, query)
	})
}

func (p *CachedProvider) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return readThrough(ctx, p, "category:"+id, func(ctx context.Context) (*domain.Category, error) {
		return p.next.GetCategory(ctx, id)
	})
}

func (p *CachedProvider) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return readThrough(ctx, p, "category-slug:"+slug, func(ctx context.Context) (*domain.Category, error) {
		return p.next.GetCategoryBySlug(ctx, slug)
	})
}

func (p *CachedProvider) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return readThrough(ctx, p, "categories", p.next.ListCategories)
}

// Invalidate drops every cached catalog entry. Loads that started before the
// call will not write their results back.
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	p.gen.Add(1)
	return p.cache.DeletePrefix(ctx, cachePrefix)
}

func readThrough[T any](ctx context.Context, p *CachedProvider, key string, load func(context.Context) (T, error)) (T, error) {
	key = cachePrefix + key
	gen := p.gen.Load()

	v, err, _ := p.sfg.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		var cached T
		err := p.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			p.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
		}

		fresh, err := load(ctx)
		if err != nil {
			return fresh, err
		}
		if p.gen.Load() != gen {
			return fresh, nil
		}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := p.cache.Set(setCtx, key, fresh); err != nil {
			p.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
