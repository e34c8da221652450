// internal/app/features/labels/routes.go
package labels

import "github.com/go-chi/chi/v5"

// Routes returns the router for label endpoints (mounted under /labels,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList) // ?team={id}
	r.Post("/", h.HandleCreate)
	r.Delete("/{labelID}", h.HandleDelete)

	return r
}
