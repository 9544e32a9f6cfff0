package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog        catalog.Provider
	Admin          *catalog.Admin
	Reviews        *catalog.Reviews
	Sessions       *session.Manager
	Logger         *zap.Logger
	RequestTimeout time.Duration
	SecureCookies  bool
	// Ping reports whether the catalog backend is reachable; nil skips the check.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	cart := NewCartHandler(cfg.Sessions, cfg.Catalog, cfg.RequestTimeout)
	wishlist := NewWishlistHandler(cfg.Sessions, cfg.Catalog, cfg.RequestTimeout)
	authH := NewAuthHandler(cfg.Sessions, cfg.RequestTimeout)
	admin := NewAdminHandler(cfg.Admin, cfg.Sessions, cfg.RequestTimeout)
	reviews := NewReviewHandler(cfg.Reviews, cfg.Sessions, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ping(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, "unavailable", "catalog unreachable")
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware(cfg.SecureCookies))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/featured", products.Featured)
			r.Get("/{id}", products.Get)
			r.Get("/{id}/reviews", reviews.List)
			r.Post("/{id}/reviews", reviews.Create)
		})
		r.Get("/categories", products.Categories)
		r.Get("/categories/{slug}/products", products.CategoryProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Get("/count", cart.Count)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{product_id}", cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlist.Get)
			r.Delete("/", wishlist.Clear)
			r.Post("/items", wishlist.AddItem)
			r.Get("/items/{product_id}", wishlist.Contains)
			r.Delete("/items/{product_id}", wishlist.RemoveItem)
			r.Post("/items/{product_id}/toggle", wishlist.Toggle)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)
			r.Get("/me", authH.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireSession)

			r.Post("/products", admin.CreateProduct)
			r.Put("/products/{id}", admin.UpdateProduct)
			r.Delete("/products/{id}", admin.DeleteProduct)
			r.Post("/categories", admin.CreateCategory)
			r.Put("/categories/{id}", admin.UpdateCategory)
			r.Delete("/categories/{id}", admin.DeleteCategory)
		})
	})

	return r
}
