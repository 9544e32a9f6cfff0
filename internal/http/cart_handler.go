package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/cart"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	sessions *session.Manager
	catalog  catalog.Provider
	timeout  time.Duration
}

func NewCartHandler(sessions *session.Manager, provider catalog.Provider, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  provider,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CountResponse struct {
	Count int `json:"count"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.updateCart(ctx, w, r, http.StatusOK, func(*cart.Store) {})
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var count int
	_ = withClient(ctx, h.sessions, r, func(c *session.Client) error {
		count = c.Cart.ItemCount()
		return nil
	})
	respondJSON(w, http.StatusOK, &CountResponse{Count: count})
}

// AddItem adds a line for an existing product. Quantities below one count as one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		handleError(w, r, fmt.Errorf("%w: product_id is required", domain.ErrValidation))
		return
	}
	if err := validateQuantity(req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	if _, err := h.catalog.GetByID(ctx, req.ProductID); err != nil {
		handleError(w, r, err)
		return
	}

	h.updateCart(ctx, w, r, http.StatusCreated, func(s *cart.Store) {
		s.AddItem(ctx, domain.CartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Color:     req.Color,
			Size:      req.Size,
		})
	})
}

// UpdateQuantity sets the quantity of every line of the product; below one removes them.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateQuantity(req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}

	productID := chi.URLParam(r, "product_id")
	h.updateCart(ctx, w, r, http.StatusOK, func(s *cart.Store) {
		if req.Quantity < 1 {
			s.RemoveItem(ctx, productID)
		} else {
			s.UpdateQuantity(ctx, productID, req.Quantity)
		}
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	h.updateCart(ctx, w, r, http.StatusOK, func(s *cart.Store) {
		s.RemoveItem(ctx, productID)
	})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.updateCart(ctx, w, r, http.StatusOK, func(s *cart.Store) {
		s.Clear(ctx)
	})
}

// updateCart applies change to the client's cart and responds with the priced result.
func (h *CartHandler) updateCart(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, change func(*cart.Store)) {
	var summary *cart.Summary
	err := withClient(ctx, h.sessions, r, func(c *session.Client) error {
		change(c.Cart)

		var err error
		summary, err = c.Cart.Summarize(ctx, h.catalog)
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, status, summary)
}

func validateQuantity(q int) error {
	if q > cart.MaxQuantity {
		return fmt.Errorf("%w: quantity must be at most %d", domain.ErrValidation, cart.MaxQuantity)
	}
	return nil
}
