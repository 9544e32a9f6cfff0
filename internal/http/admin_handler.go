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

type AdminHandler struct {
	admin    *catalog.Admin
	sessions *session.Manager
	timeout  time.Duration
}

func NewAdminHandler(admin *catalog.Admin, sessions *session.Manager, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		sessions: sessions,
		timeout:  timeout,
	}
}

// RequireSession rejects clients that are not logged in. Role checks stay
// with catalog.Admin, so a logged-in customer gets 403 rather than 401.
func (h *AdminHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := withClient(r.Context(), h.sessions, r, func(c *session.Client) error {
			if !c.Auth.IsAuthenticated() {
				return domain.ErrUnauthenticated
			}
			return nil
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if err := decodeJSON(w, r, &p); err != nil {
		handleError(w, r, err)
		return
	}

	var created *domain.Product
	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) (err error) {
		created, err = h.admin.CreateProduct(ctx, caller, p)
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if err := decodeJSON(w, r, &p); err != nil {
		handleError(w, r, err)
		return
	}

	var updated *domain.Product
	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) (err error) {
		updated, err = h.admin.UpdateProduct(ctx, caller, chi.URLParam(r, "id"), p)
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) error {
		return h.admin.DeleteProduct(ctx, caller, chi.URLParam(r, "id"))
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var c domain.Category
	if err := decodeJSON(w, r, &c); err != nil {
		handleError(w, r, err)
		return
	}

	var created *domain.Category
	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) (err error) {
		created, err = h.admin.CreateCategory(ctx, caller, c)
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var c domain.Category
	if err := decodeJSON(w, r, &c); err != nil {
		handleError(w, r, err)
		return
	}

	var updated *domain.Category
	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) (err error) {
		updated, err = h.admin.UpdateCategory(ctx, caller, chi.URLParam(r, "id"), c)
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.asCaller(ctx, r, func(caller catalog.Authorizer) error {
		return h.admin.DeleteCategory(ctx, caller, chi.URLParam(r, "id"))
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// asCaller runs fn on behalf of the requesting client's session.
func (h *AdminHandler) asCaller(ctx context.Context, r *http.Request, fn func(catalog.Authorizer) error) error {
	return withClient(ctx, h.sessions, r, func(c *session.Client) error {
		return fn(c.Auth)
	})
}
