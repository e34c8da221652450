// internal/app/features/issues/routes.go
package issues

import "github.com/go-chi/chi/v5"

// Routes returns the router for issue endpoints (mounted under /issues,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList) // ?project={id}
	r.Post("/", h.HandleCreate)

	r.Route("/{issueID}", func(r chi.Router) {
		r.Get("/", h.HandleView)
		r.Patch("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
	})

	return r
}
