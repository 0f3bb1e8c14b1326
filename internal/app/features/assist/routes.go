// internal/app/features/assist/routes.go
package assist

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the assistance router. Only admins publish notices, so
// only admins get the helpers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))
	r.Post("/enhance", h.HandleEnhance)
	r.Post("/image", h.HandleImage)
	r.Post("/image/edit", h.HandleEdit)
	return r
}
