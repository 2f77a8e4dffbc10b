// internal/app/features/users/routes.go
package usersfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the users feature, mounted at /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)

	return r
}
