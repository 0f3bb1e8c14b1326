// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the directory under the path where the caller mounts it.
// Typically: r.Mount("/directory", members.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/export.csv", h.ServeExport)
		pr.Get("/{id}", h.ServeView)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Post("/upload_csv", h.HandleUploadCSV)
	})

	return r
}
