package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/sweetshop/internal/metrics"
)

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(MetricsMiddleware(h.Metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if h.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", h.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{line_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{line_id}", h.Cart.RemoveItem)
		})

		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/active", h.Orders.ActiveOrders)
			r.Get("/summary", h.Orders.Summary)
			r.Get("/{order_id}", h.Orders.GetOrder)

			// fulfilment acts on any user's order
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(RoleFulfilment))

				r.Patch("/{order_id}/status", h.Orders.UpdateStatus)
				r.Patch("/{order_id}/estimated-delivery", h.Orders.SetEstimatedDelivery)
			})
		})
	})

	return r
}
