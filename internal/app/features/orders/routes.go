// internal/app/features/orders/routes.go
package ordersfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the orders feature, mounted at /api/orders.
// Authentication is applied by the parent /api group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Delete)

	return r
}
