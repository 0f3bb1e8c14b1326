package login

import "github.com/go-chi/chi/v5"

// Routes returns a chi.Router with the login and signup routes.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin)
	r.Post("/signup", h.HandleSignup)
	return r
}
