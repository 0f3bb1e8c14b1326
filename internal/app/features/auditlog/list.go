// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ServeList handles GET /admin/audit.
//
// Filters: ?category=, ?event_type=, ?since=YYYY-MM-DD, ?limit=.
// Super admins may add ?district=; sub admins only see their own district.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Limit:     defaultLimit,
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		filter.Limit = int64(min(n, maxLimit))
	}
	if s := query.Get(r, "since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if su.Role == models.RoleSuperAdmin {
		filter.District = query.Get(r, "district")
	} else {
		filter.District = su.District
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Handle(w, r, "audit log: query", err)
		return
	}

	names := map[primitive.ObjectID]string{}
	name := func(id *primitive.ObjectID) string {
		if id == nil || h.Users == nil {
			return ""
		}
		if n, ok := names[*id]; ok {
			return n
		}
		n := ""
		if u, err := h.Users.Get(ctx, *id); err == nil {
			n = u.Name
		}
		names[*id] = n
		return n
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorName:     name(e.ActorID),
			TargetName:    name(e.UserID),
			District:      e.District,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		})
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Items: items, Count: len(items)})
}
