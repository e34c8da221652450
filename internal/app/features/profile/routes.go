// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes returns the router for account endpoints (mounted under /me,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleMe)
	r.Post("/password", h.HandleChangePassword)
	return r
}
