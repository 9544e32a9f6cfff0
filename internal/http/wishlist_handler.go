package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/wishlist"
	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	sessions *session.Manager
	catalog  catalog.Provider
	timeout  time.Duration
}

func NewWishlistHandler(sessions *session.Manager, provider catalog.Provider, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		sessions: sessions,
		catalog:  provider,
		timeout:  timeout,
	}
}

type WishlistItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type WishlistResponse struct {
	Items    []domain.WishlistItem `json:"items"`
	Products []*domain.Product     `json:"products"`
}

type MembershipResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.updateWishlist(ctx, w, r, http.StatusOK, func(*wishlist.Store) {})
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req WishlistItemRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		handleError(w, r, fmt.Errorf("%w: product_id is required", domain.ErrValidation))
		return
	}
	if _, err := h.catalog.GetByID(ctx, req.ProductID); err != nil {
		handleError(w, r, err)
		return
	}

	h.updateWishlist(ctx, w, r, http.StatusCreated, func(s *wishlist.Store) {
		s.AddItem(ctx, req.ProductID)
	})
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var in bool
	err := withClient(ctx, h.sessions, r, func(c *session.Client) error {
		// only a product that exists may be toggled in; toggling out always works
		if !c.Wishlist.IsInWishlist(productID) {
			if _, err := h.catalog.GetByID(ctx, productID); err != nil {
				return err
			}
		}
		in = c.Wishlist.ToggleItem(ctx, productID)
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &MembershipResponse{ProductID: productID, InWishlist: in})
}

func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var in bool
	_ = withClient(ctx, h.sessions, r, func(c *session.Client) error {
		in = c.Wishlist.IsInWishlist(productID)
		return nil
	})

	respondJSON(w, http.StatusOK, &MembershipResponse{ProductID: productID, InWishlist: in})
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	h.updateWishlist(ctx, w, r, http.StatusOK, func(s *wishlist.Store) {
		s.RemoveItem(ctx, productID)
	})
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.updateWishlist(ctx, w, r, http.StatusOK, func(s *wishlist.Store) {
		s.Clear(ctx)
	})
}

func (h *WishlistHandler) updateWishlist(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, change func(*wishlist.Store)) {
	resp := &WishlistResponse{}
	err := withClient(ctx, h.sessions, r, func(c *session.Client) error {
		change(c.Wishlist)

		products, err := c.Wishlist.Products(ctx, h.catalog)
		if err != nil {
			return err
		}
		resp.Items, resp.Products = c.Wishlist.Items(), products
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, status, resp)
}
