// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/idcard"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

type meResponse struct {
	User      models.User `json:"user"`
	Nav       auth.Nav    `json:"nav"`
	HasUnread bool        `json:"has_unread"`
	// IDCardAvailable mirrors the rule idcard.Render enforces.
	IDCardAvailable bool `json:"id_card_available"`
}

// ServeMe handles GET /me: the full stored record, the session's navigation
// state and whether an active notice is still unseen.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Members.Get(ctx, su.ObjectID())
	if err != nil {
		h.ErrLog.Handle(w, r, "profile: load", err)
		return
	}

	active, err := h.Bulletin.ActiveNotices(ctx)
	if err != nil {
		// The unread dot is cosmetic; serve the profile without it.
		h.Log.Warn("profile: active notices", zap.Error(err))
	}

	uierrors.WriteJSON(w, http.StatusOK, meResponse{
		User:            *u,
		Nav:             h.SessionMgr.Nav(r),
		HasUnread:       bulletin.HasUnread(active, h.SessionMgr.SeenNotices(r)),
		IDCardAvailable: u.Status == models.StatusApproved,
	})
}

// HandleChanges handles POST /me/changes. The body is a partial profile; only
// the keys present become the pending proposal, replacing any earlier one.
func (h *Handler) HandleChanges(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	var changes models.ProfileChanges
	if err := formutil.Decode(w, r, &changes); err != nil {
		h.ErrLog.Handle(w, r, "profile: decode changes", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Members.SubmitEdit(ctx, su.Actor(), changes)
	if err != nil {
		h.ErrLog.Handle(w, r, "profile: submit changes", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusAccepted, map[string]any{
		"user":    out,
		"message": "Your changes were sent for approval.",
	})
}

// ServeIDCard handles GET /me/idcard.png.
func (h *Handler) ServeIDCard(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Members.Get(ctx, su.ObjectID())
	if err != nil {
		h.ErrLog.Handle(w, r, "idcard: load", err)
		return
	}
	png, err := idcard.Render(u)
	if err != nil {
		h.ErrLog.Handle(w, r, "idcard: render", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	if formutil.Bool(r, "download") {
		w.Header().Set("Content-Disposition", `attachment; filename="id-card.png"`)
	}
	_, _ = w.Write(png)
}
