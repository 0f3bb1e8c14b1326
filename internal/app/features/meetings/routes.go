// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	r.With(sm.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin)).Post("/", h.HandleCreate)
	return r
}
