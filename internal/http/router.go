package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter wires every route onto m. The returned handler is wrapped in an otelhttp server span.
func NewRouter(m *state.Manager, cfg config.Config, logger *zap.Logger) http.Handler {
	products := NewProductHandler(m, cfg.Listing.PerPage, logger)
	carts := NewCartHandler(m, logger)
	checkouts := NewCheckoutHandler(m, logger)
	orders := NewOrdersHandler(m, logger)
	auth := NewAuthHandler(m, logger)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(AccessLog(logger))
	if cfg.HTTP.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}
	if cfg.HTTP.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.HTTP.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "ok",
			"catalog_loading": m.Catalog.Loading(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Get("/{id}", products.Get)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
		})
		r.Get("/categories", products.Categories)
		r.Get("/catalog/status", products.Status)
		r.Route("/listing", func(r chi.Router) {
			r.Get("/", products.Listing)
			r.Put("/filter", products.SetListingFilter)
			r.Put("/page", products.SetListingPage)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Put("/", carts.ReplaceCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Delete("/items/{product_id}", carts.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkouts.Get)
			r.Post("/", checkouts.Stage)
			r.Post("/buy-now", checkouts.BuyNow)
			r.Post("/place-order", checkouts.PlaceOrder)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Get("/{id}", orders.Get)
			r.Put("/{id}/status", orders.UpdateStatus)
			r.Delete("/{id}", orders.Cancel)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
