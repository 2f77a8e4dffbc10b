// internal/app/features/categories/routes.go
package categoriesfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the categories feature, mounted at /api/categories.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/order", h.Reorder)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/products", h.InStock)

	return r
}
