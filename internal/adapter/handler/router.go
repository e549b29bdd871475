package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the API routes. Forwarding headers are honoured for the
// client address only when trustProxy is set.
func NewRouter(h *HTTPHandler, checkoutLimiter *RateLimiter, trustProxy bool, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/featured", h.FeaturedProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Get("/cart", h.GetCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/cart/items", h.AddItem)
		r.Patch("/cart/items/{productID}", h.UpdateItem)
		r.Delete("/cart/items/{productID}", h.RemoveItem)

		r.With(RateLimit(checkoutLimiter)).Post("/checkout", h.Checkout)
		if h.orders != nil {
			r.Get("/orders/{id}", h.GetOrder)
		}
	})

	return r
}
