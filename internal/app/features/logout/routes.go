// internal/app/features/logout/routes.go
package logout

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns a chi.Router that handles logout.
// GET is kept for links; POST is what the client sends.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeLogout)
	r.Get("/", h.ServeLogout)
	return r
}
