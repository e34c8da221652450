// internal/app/features/search/routes.go
package search

import "github.com/go-chi/chi/v5"

// Routes returns the router for the search endpoint (mounted under /search,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}
