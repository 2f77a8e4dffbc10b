// internal/app/features/products/routes.go
package productsfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the products feature, mounted at /api/products.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}
