// internal/app/features/feed/routes.go
package feed

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the feed (typically at "/feed"). Every route needs a
// signed-in user; posting rules are enforced by the bulletin service.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeFeed)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/like", h.HandleLike)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
