package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/listing"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog catalog.Provider
	timeout time.Duration
}

func NewProductHandler(provider catalog.Provider, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: provider,
		timeout: timeout,
	}
}

type CategoriesResponse struct {
	Categories []*domain.Category `json:"categories"`
}

type ProductsResponse struct {
	Products []*domain.Product `json:"products"`
}

// List serves the catalog browsing page: filter, sort, then paginate.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categoryID, err := h.resolveCategory(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	h.respondListing(ctx, w, r, categoryID)
}

// CategoryProducts lists the products of the category with the given slug.
func (h *ProductHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.catalog.GetCategoryBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	h.respondListing(ctx, w, r, c.ID)
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListFeatured(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &CategoriesResponse{Categories: categories})
}

// respondListing narrows the catalog on the provider side where it can, then
// applies the full criteria, sort and pagination.
func (h *ProductHandler) respondListing(ctx context.Context, w http.ResponseWriter, r *http.Request, categoryID string) {
	criteria, sortKey, page, pageSize, err := parseListingQuery(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	criteria.Category = categoryID

	var products []*domain.Product
	switch {
	case criteria.Category != "":
		products, err = h.catalog.ListByCategory(ctx, criteria.Category)
	case criteria.Query != "":
		products, err = h.catalog.Search(ctx, criteria.Query)
	default:
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	matched := listing.Apply(products, criteria, sortKey)
	respondJSON(w, http.StatusOK, listing.Paginate(matched, page, pageSize))
}

// resolveCategory accepts a category ID or slug. Unknown values are passed
// through unchanged and simply match nothing.
func (h *ProductHandler) resolveCategory(ctx context.Context, value string) (string, error) {
	if value == "" {
		return "", nil
	}

	c, err := h.catalog.GetCategory(ctx, value)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	c, err = h.catalog.GetCategoryBySlug(ctx, value)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	return value, nil
}

func parseListingQuery(q url.Values) (listing.Criteria, listing.SortKey, int, int, error) {
	var criteria listing.Criteria

	sortKey, err := listing.ParseSortKey(q.Get("sort"))
	if err != nil {
		return criteria, "", 0, 0, err
	}

	if q.Has("min_price") || q.Has("max_price") {
		criteria.Price = listing.DefaultPriceRange()
		if criteria.Price.Min, err = floatParam(q, "min_price", criteria.Price.Min); err != nil {
			return criteria, "", 0, 0, err
		}
		if criteria.Price.Max, err = floatParam(q, "max_price", criteria.Price.Max); err != nil {
			return criteria, "", 0, 0, err
		}
	}

	if criteria.MinRating, err = floatParam(q, "rating", 0); err != nil {
		return criteria, "", 0, 0, err
	}
	criteria.Query = q.Get("q")

	page, err := intParam(q, "page", 1)
	if err != nil {
		return criteria, "", 0, 0, err
	}
	pageSize, err := intParam(q, "page_size", listing.DefaultPageSize)
	if err != nil {
		return criteria, "", 0, 0, err
	}

	return criteria, sortKey, page, pageSize, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return v, nil
}
