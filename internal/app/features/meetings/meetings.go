// internal/app/features/meetings/meetings.go
package meetings

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

type createRequest struct {
	Title          string `json:"title"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	MeetingType    string `json:"meeting_type"`
	Venue          string `json:"venue"`
	Link           string `json:"link"`
	Agenda         string `json:"agenda"`
	TargetDistrict string `json:"target_district"`
}

type createResponse struct {
	Meeting models.Meeting `json:"meeting"`
	Notice  models.Post    `json:"notice"`
}

type listResponse struct {
	Meetings []models.Meeting `json:"meetings"`
	// Selected is the meeting last opened from a notice in this session.
	Selected string `json:"selected,omitempty"`
}

// ServeList handles GET /meetings.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Bulletin.ListMeetings(ctx, su.Actor())
	if err != nil {
		h.ErrLog.Handle(w, r, "meetings: list", err)
		return
	}
	if list == nil {
		list = []models.Meeting{}
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Meetings: list,
		Selected: h.SessionMgr.Nav(r).SelectedMeeting,
	})
}

// ServeView handles GET /meetings/{id} and records it as the selected meeting.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "meetings: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Bulletin.GetMeeting(ctx, su.Actor(), id)
	if err != nil {
		h.ErrLog.Handle(w, r, "meetings: get", err)
		return
	}

	nav := h.SessionMgr.Nav(r)
	nav.SelectedMeeting = m.ID.Hex()
	if err := h.SessionMgr.SetNav(w, r, nav); err != nil {
		h.Log.Warn("meetings: save nav", zap.Error(err))
	}
	uierrors.WriteJSON(w, http.StatusOK, m)
}

// HandleCreate handles POST /meetings. The meeting is announced with a
// linked notice that is returned alongside it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	var in createRequest
	if err := formutil.Decode(w, r, &in); err != nil {
		h.ErrLog.Handle(w, r, "meetings: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, notice, err := h.Bulletin.CreateMeeting(ctx, su.Actor(), bulletin.MeetingInput{
		Title:          in.Title,
		Date:           in.Date,
		Time:           in.Time,
		MeetingType:    in.MeetingType,
		Venue:          in.Venue,
		Link:           in.Link,
		Agenda:         in.Agenda,
		TargetDistrict: in.TargetDistrict,
	})
	if err != nil {
		h.ErrLog.Handle(w, r, "meetings: create", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, createResponse{Meeting: m, Notice: notice})
}
