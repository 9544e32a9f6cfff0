package http

import (
	"net/http"
	"testing"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews_RequireLogin(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, newClient(), http.MethodPost, "/api/v1/products/1/reviews",
		ReviewRequestDTO{Rating: 5, Comment: "Lovely"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decode[ErrorResponse](t, rec).Code)
}

func TestReviews_CreateAndList(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "customer@example.com", "customer123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/products/1/reviews",
		ReviewRequestDTO{Rating: 4, Comment: "Lovely weave"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Review](t, rec)
	assert.Equal(t, "1", created.ProductID)
	assert.Equal(t, 4, created.Rating)
	assert.NotEmpty(t, created.UserName)

	// anyone may read reviews
	rec = api.do(t, newClient(), http.MethodGet, "/api/v1/products/1/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]domain.Review](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	product := decode[domain.Product](t, api.do(t, client, http.MethodGet, "/api/v1/products/1", nil))
	assert.Equal(t, 1, product.ReviewCount)
	assert.InDelta(t, 4.0, product.Rating, 1e-9)
}

func TestReviews_OnePerUser(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "customer@example.com", "customer123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/products/2/reviews", ReviewRequestDTO{Rating: 5, Comment: "Great"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// a different browser of the same user is still the same reviewer
	other := newClient()
	login(t, api, other, "customer@example.com", "customer123")
	rec = api.do(t, other, http.MethodPost, "/api/v1/products/2/reviews", ReviewRequestDTO{Rating: 1, Comment: "Again"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "product already reviewed")

	// another user may still review
	admin := newClient()
	login(t, api, admin, "admin@example.com", "admin123")
	rec = api.do(t, admin, http.MethodPost, "/api/v1/products/2/reviews", ReviewRequestDTO{Rating: 3, Comment: "Nice"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestReviews_Rejects(t *testing.T) {
	api := setupAPI(t)
	client := newClient()
	login(t, api, client, "customer@example.com", "customer123")

	rec := api.do(t, client, http.MethodPost, "/api/v1/products/1/reviews", ReviewRequestDTO{Rating: 9, Comment: "Too good"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, client, http.MethodPost, "/api/v1/products/1/reviews", ReviewRequestDTO{Rating: 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, client, http.MethodPost, "/api/v1/products/1/reviews", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, client, http.MethodPost, "/api/v1/products/999/reviews", ReviewRequestDTO{Rating: 3, Comment: "Where"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, client, http.MethodGet, "/api/v1/products/999/reviews", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
