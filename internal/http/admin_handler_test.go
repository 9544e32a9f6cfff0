package http

import (
	"net/http"
	"testing"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductBody() map[string]any {
	return map[string]any{
		"name":        "Terracotta Planter",
		"description": "Hand-thrown terracotta planter",
		"price":       850,
		"images":      []string{"https://img.example/planter.jpg"},
		"category":    "home-decor",
		"tags":        []string{"terracotta", "garden"},
		"in_stock":    true,
		"rating":      4.1,
	}
}

func TestAdmin_RequiresLogin(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, newClient(), http.MethodPost, "/api/v1/admin/products", newProductBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_CustomerIsForbidden(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "customer@example.com", "customer123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/admin/products", newProductBody())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode[ErrorResponse](t, rec).Code)

	rec = api.do(t, client, http.MethodDelete, "/api/v1/admin/products/1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, newClient(), http.MethodGet, "/api/v1/products/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "admin@example.com", "admin123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/admin/products", newProductBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Product](t, rec)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	rec = api.do(t, client, http.MethodGet, "/api/v1/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := newProductBody()
	body["name"] = "Large Terracotta Planter"
	body["price"] = 1100
	rec = api.do(t, client, http.MethodPut, "/api/v1/admin/products/"+created.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Large Terracotta Planter", decode[domain.Product](t, rec).Name)

	rec = api.do(t, client, http.MethodDelete, "/api/v1/admin/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, client, http.MethodGet, "/api/v1/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_ProductValidation(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "admin@example.com", "admin123")

	body := newProductBody()
	body["discount_price"] = 900 // above price
	rec := api.do(t, client, http.MethodPost, "/api/v1/admin/products", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = newProductBody()
	body["category"] = "furniture"
	rec = api.do(t, client, http.MethodPost, "/api/v1/admin/products", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, client, http.MethodPut, "/api/v1/admin/products/999", newProductBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_CategoryLifecycle(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "admin@example.com", "admin123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/admin/categories",
		domain.Category{Name: "Pottery", Slug: "pottery"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Category](t, rec)

	rec = api.do(t, client, http.MethodPost, "/api/v1/admin/categories",
		domain.Category{Name: "Also Pottery", Slug: "pottery"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, client, http.MethodPut, "/api/v1/admin/categories/"+created.ID,
		domain.Category{Name: "Ceramics", Slug: "ceramics"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, client, http.MethodGet, "/api/v1/categories/ceramics/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, client, http.MethodDelete, "/api/v1/admin/categories/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, client, http.MethodDelete, "/api/v1/admin/categories/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
