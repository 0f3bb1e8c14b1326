// internal/app/features/members/list.go
package members

import (
	"context"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/csvutil"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type listResponse struct {
	Members []directorypolicy.MemberView `json:"members"`
	Count   int                          `json:"count"`
	// District is the district actually listed; "" means all districts.
	District string `json:"district"`
}

// scopeRequest reads ?district=, ?view_all= and ?q=.
func scopeRequest(r *http.Request) directorypolicy.ScopeRequest {
	return directorypolicy.ScopeRequest{
		District: query.Get(r, "district"),
		ViewAll:  formutil.Bool(r, "view_all"),
		Search:   query.Get(r, "q"),
	}
}

// ServeList handles GET /directory.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	viewer := su.Actor()
	req := scopeRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Members.Directory(ctx, viewer, req)
	if err != nil {
		h.ErrLog.Handle(w, r, "directory: list", err)
		return
	}

	resp := listResponse{Members: rows, Count: len(rows)}
	if scope := directorypolicy.ListScope(viewer, req); !scope.AllDistricts {
		resp.District = scope.District
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// ServeView handles GET /directory/{id}. The selected member is remembered
// in the session so the client can restore the detail view.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "directory: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.Members.Member(ctx, su.Actor(), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "directory: member", err)
		return
	}

	nav := h.SessionMgr.Nav(r)
	nav.SelectedUser = view.ID
	if err := h.SessionMgr.SetNav(w, r, nav); err != nil {
		h.Log.Warn("directory: save nav", zap.Error(err))
	}
	uierrors.WriteJSON(w, http.StatusOK, view)
}

// ServeExport handles GET /directory/export.csv. The file holds exactly the
// masked rows ServeList would return for the same query.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Members.Directory(ctx, su.Actor(), scopeRequest(r))
	if err != nil {
		h.ErrLog.Handle(w, r, "directory: export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvutil.DirectoryFilename))
	if err := csvutil.WriteDirectory(w, rows); err != nil {
		// Headers are gone; all we can do is log.
		h.Log.Error("directory: write csv", zap.Error(err))
		return
	}
	h.Log.Info("directory exported", zap.String("user_id", su.ID), zap.Int("rows", len(rows)))
}
