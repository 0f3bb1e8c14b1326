// internal/app/features/admin/users.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type statusRequest struct {
	Status string `json:"status"`
}

type badgeRequest struct {
	Badge string `json:"badge"`
}

// userAction is the shape shared by the single-target actions.
type userAction func(ctx context.Context, actor *models.User, id primitive.ObjectID, r *http.Request) (models.User, error)

func (h *Handler) serveAction(name string, fn userAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		su, _ := auth.CurrentUser(r)
		id, err := formutil.ObjectID(r, "id")
		if err != nil {
			h.ErrLog.Handle(w, r, "admin: id", err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		u, err := fn(ctx, su.Actor(), id, r)
		if err != nil {
			h.ErrLog.Handle(w, r, "admin: "+name, err)
			return
		}
		uierrors.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
	}
}

// HandleStatus handles POST /admin/users/{id}/status {"status": "SUSPENDED"|"APPROVED"}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "admin: decode status", err)
		return
	}
	h.serveAction("status", func(ctx context.Context, actor *models.User, id primitive.ObjectID, _ *http.Request) (models.User, error) {
		return h.Members.UpdateStatus(ctx, actor, id, in.Status)
	})(w, r)
}

// HandlePromote handles POST /admin/users/{id}/promote.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.serveAction("promote", func(ctx context.Context, actor *models.User, id primitive.ObjectID, _ *http.Request) (models.User, error) {
		return h.Members.Promote(ctx, actor, id)
	})(w, r)
}

// HandleBadge handles POST /admin/users/{id}/badge {"badge": "blue"|"green"|"red"|""}.
func (h *Handler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	var in badgeRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "admin: decode badge", err)
		return
	}
	h.serveAction("badge", func(ctx context.Context, actor *models.User, id primitive.ObjectID, _ *http.Request) (models.User, error) {
		return h.Members.AssignBadge(ctx, actor, id, in.Badge)
	})(w, r)
}

// HandleDelete handles DELETE /admin/users/{id}. The record is removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Members.Delete(ctx, su.Actor(), id); err != nil {
		h.ErrLog.Handle(w, r, "admin: delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type storageResponse struct {
	UsedBytes int64 `json:"used_bytes"`
	OverLimit bool  `json:"over_limit"`
	Members   int64 `json:"members"`
}

// ServeStorage handles GET /admin/storage: media usage and member count.
func (h *Handler) ServeStorage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Members.Count(ctx)
	if err != nil {
		h.ErrLog.Handle(w, r, "admin: count", err)
		return
	}
	over, used := h.Members.StorageCheck(ctx)
	uierrors.WriteJSON(w, http.StatusOK, storageResponse{UsedBytes: used, OverLimit: over, Members: n})
}
