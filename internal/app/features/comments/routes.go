// internal/app/features/comments/routes.go
package comments

import "github.com/go-chi/chi/v5"

// Routes returns the router for comment endpoints (mounted under /comments,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList) // ?issue={id}
	r.Post("/", h.HandleCreate)
	r.Delete("/{commentID}", h.HandleDelete)

	return r
}
