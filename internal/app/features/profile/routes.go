// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the signed-in member's own routes under /me.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMe)
	r.Post("/changes", h.HandleChanges)
	r.Get("/idcard.png", h.ServeIDCard)
	return r
}
