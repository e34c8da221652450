// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes returns the router for password auth endpoints (mounted under
// /auth). Signup and login are public; session and logout require the
// LoadSessionUser middleware to have run but enforce auth themselves.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.HandleSignup)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Get("/session", h.HandleSession)
	return r
}
