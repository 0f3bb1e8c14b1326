// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log (typically at "/admin/audit").
// Super admins see every district; sub admins see only their own.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))

		pr.Get("/", h.ServeList)
	})

	return r
}
