// internal/app/features/admin/reviews.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/proposal"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
)

type reviewsResponse struct {
	Items []membership.ReviewItem `json:"items"`
	Count int                     `json:"count"`
}

// decisionResponse reports what an approve or reject did.
type decisionResponse struct {
	User       models.User   `json:"user"`
	Kind       proposal.Kind `json:"kind"`
	Changed    bool          `json:"changed"`
	MergedKeys []string      `json:"merged_keys,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ServeReviews handles GET /admin/reviews.
func (h *Handler) ServeReviews(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Members.ReviewQueue(ctx, su.Actor())
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: review queue", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, reviewsResponse{Items: items, Count: len(items)})
}

// HandleApprove handles POST /admin/reviews/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, res, err := h.Members.Approve(ctx, su.Actor(), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: approve", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, decisionResponse{User: u, Kind: res.Kind, Changed: res.Changed, MergedKeys: res.MergedKeys})
}

// HandleReject handles POST /admin/reviews/{id}/reject with an optional
// {"reason": "..."} body.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: id", err)
		return
	}
	var in rejectRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "admin: decode reject", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, res, err := h.Members.Reject(ctx, su.Actor(), id, in.Reason)
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: reject", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, decisionResponse{User: u, Kind: res.Kind, Changed: res.Changed})
}

// ServeStats handles GET /admin/stats: approved members, pending signups and
// active districts within the admin's review scope.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stats, err := h.Members.Stats(ctx, su.Actor())
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: stats", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, stats)
}
