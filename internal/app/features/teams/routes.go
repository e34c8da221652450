// internal/app/features/teams/routes.go
package teams

import "github.com/go-chi/chi/v5"

// Routes returns the router for team endpoints (mounted under /teams,
// behind the signed-in middleware).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Route("/{teamID}", func(r chi.Router) {
		r.Get("/", h.HandleView)
		r.Patch("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)

		r.Post("/members", h.HandleAddMember)
		r.Delete("/members/{userID}", h.HandleRemoveMember)
		r.Patch("/members/{userID}", h.HandleSetRole)
	})

	return r
}
