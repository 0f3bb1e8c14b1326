// internal/app/features/notices/notices.go
package notices

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

type noticeItem struct {
	models.Post
	Seen bool `json:"seen"`
}

type listResponse struct {
	Notices   []noticeItem `json:"notices"`
	HasUnread bool         `json:"has_unread"`
}

type createRequest struct {
	Content     string `json:"content"`
	ExpiryHours int    `json:"expiry_hours"`
	Enhance     bool   `json:"enhance"`
}

type createResponse struct {
	Notice   models.Post `json:"notice"`
	Enhanced bool        `json:"enhanced"`
}

type openResponse struct {
	Notice  models.Post     `json:"notice"`
	Meeting *models.Meeting `json:"meeting,omitempty"`
	// Redirect tells the client to show Meeting instead of the notice.
	Redirect bool `json:"redirect"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, history bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		posts []models.Post
		err   error
	)
	if history {
		posts, err = h.Bulletin.NoticeHistory(ctx)
	} else {
		posts, err = h.Bulletin.ActiveNotices(ctx)
	}
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: list", err)
		return
	}

	seen := h.SessionMgr.SeenNotices(r)
	items := make([]noticeItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, noticeItem{Post: p, Seen: seen[p.ID.Hex()]})
	}

	resp := listResponse{Notices: items}
	if history {
		// The unread flag only ever counts active notices.
		active, err := h.Bulletin.ActiveNotices(ctx)
		if err != nil {
			h.Log.Warn("notices: active for unread flag", zap.Error(err))
		}
		resp.HasUnread = bulletin.HasUnread(active, seen)
	} else {
		resp.HasUnread = bulletin.HasUnread(posts, seen)
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// ServeActive handles GET /notices: unexpired notices, newest first.
func (h *Handler) ServeActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ServeHistory handles GET /notices/history: every notice, including expired.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ServeUnread handles GET /notices/unread, the badge poll.
func (h *Handler) ServeUnread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	active, err := h.Bulletin.ActiveNotices(ctx)
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: unread", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]bool{
		"has_unread": bulletin.HasUnread(active, h.SessionMgr.SeenNotices(r)),
	})
}

// HandleCreate handles POST /notices.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	var in createRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "notices: decode", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create notice")
	defer cancel()

	n, enhanced, err := h.Bulletin.CreateNotice(ctx, su.Actor(), bulletin.NoticeInput{
		Content:     in.Content,
		ExpiryHours: in.ExpiryHours,
		Enhance:     in.Enhance,
	})
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: create", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, createResponse{Notice: n, Enhanced: enhanced})
}

// HandleOpen handles POST /notices/{id}/open. The notice is marked seen for
// this session; if it announces a meeting that still exists and the viewer
// may see, the meeting is returned with redirect set and becomes the selected
// meeting.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	opened, err := h.Bulletin.OpenNotice(ctx, su.Actor(), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: open", err)
		return
	}

	if err := h.SessionMgr.MarkNoticeSeen(w, r, id.Hex()); err != nil {
		h.Log.Warn("notices: mark seen", zap.Error(err))
	}
	nav := h.SessionMgr.Nav(r)
	nav.ViewedNotice = id.Hex()
	if opened.Redirect() {
		nav.SelectedMeeting = opened.Meeting.ID.Hex()
	}
	if err := h.SessionMgr.SetNav(w, r, nav); err != nil {
		h.Log.Warn("notices: save nav", zap.Error(err))
	}

	uierrors.WriteJSON(w, http.StatusOK, openResponse{Notice: opened.Notice, Meeting: opened.Meeting, Redirect: opened.Redirect()})
}

// HandleDelete handles DELETE /notices/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "notices: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Bulletin.DeletePost(ctx, su.Actor(), id); err != nil {
		h.ErrLog.Handle(w, r, "notices: delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
