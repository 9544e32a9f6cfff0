package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	reviews  *catalog.Reviews
	sessions *session.Manager
	timeout  time.Duration
}

func NewReviewHandler(reviews *catalog.Reviews, sessions *session.Manager, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		sessions: sessions,
		timeout:  timeout,
	}
}

type ReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviews.List(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}

// Create adds the signed-in user's review of a product.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var author domain.User
	err := withClient(ctx, h.sessions, r, func(c *session.Client) error {
		s, ok := c.Auth.CurrentSession()
		if !ok {
			return domain.ErrUnauthenticated
		}
		author = s.User
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req ReviewRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	review, err := h.reviews.Add(ctx, author, chi.URLParam(r, "id"), domain.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
