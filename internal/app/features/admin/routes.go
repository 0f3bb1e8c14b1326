// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin surface. Typically: r.Mount("/admin", admin.Routes(h, sm)).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))

		pr.Get("/stats", h.ServeStats)
		pr.Get("/reviews", h.ServeReviews)
		pr.Post("/reviews/{id}/approve", h.HandleApprove)
		pr.Post("/reviews/{id}/reject", h.HandleReject)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))

		pr.Get("/storage", h.ServeStorage)
		pr.Post("/users/{id}/status", h.HandleStatus)
		pr.Post("/users/{id}/promote", h.HandlePromote)
		pr.Post("/users/{id}/badge", h.HandleBadge)
		pr.Delete("/users/{id}", h.HandleDelete)
	})

	return r
}
