// internal/app/features/notices/routes.go
package notices

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the notice board router. Any signed-in member may read;
// who may publish or delete is decided by the bulletin service.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeActive)
	r.Get("/history", h.ServeHistory)
	r.Get("/unread", h.ServeUnread)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/open", h.HandleOpen)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
