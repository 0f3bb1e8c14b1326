package meetings_test

import (
	"context"
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/features/meetings"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/sangathan/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*meetings.Handler, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, nil)
	return meetings.NewHandler(env.Bulletin, env.Sessions, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop()), env
}

func TestHandleCreate(t *testing.T) {
	h, env := newTestHandler(t)
	admin := env.AddUser(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"physical", map[string]string{
			"title": "Karyakarta Sammelan", "date": "2026-11-02", "time": "10:30",
			"meeting_type": "physical", "venue": "Gandhi Maidan", "target_district": "Patna",
		}, http.StatusCreated},
		{"whatsapp all bihar", map[string]string{
			"title": "State call", "date": "2026-11-03", "time": "19:00",
			"meeting_type": "whatsapp", "target_district": models.AllBihar,
		}, http.StatusCreated},
		{"physical without venue", map[string]string{
			"title": "x", "date": "2026-11-02", "time": "10:30",
			"meeting_type": "physical", "target_district": "Patna",
		}, http.StatusBadRequest},
		{"bad date", map[string]string{
			"title": "x", "date": "02/11/2026", "time": "10:30",
			"meeting_type": "whatsapp", "target_district": "Patna",
		}, http.StatusBadRequest},
		{"unknown district", map[string]string{
			"title": "x", "date": "2026-11-02", "time": "10:30",
			"meeting_type": "whatsapp", "target_district": "Atlantis",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest("POST", "/meetings", tt.body, testutil.SessionFor(admin)))
			rec.AssertStatus(t, tt.want)
			if tt.want == http.StatusCreated {
				rec.AssertContains(t, "NEW EVENT: "+tt.body["title"])
				rec.AssertContains(t, `"related_meeting_id"`)
			}
		})
	}
}

func TestHandleCreate_MemberDenied(t *testing.T) {
	h, env := newTestHandler(t)
	amit := env.AddUser(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest("POST", "/meetings", map[string]string{
		"title": "x", "date": "2026-11-02", "time": "10:30", "meeting_type": "whatsapp", "target_district": "Patna",
	}, testutil.SessionFor(amit)))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeList_DistrictScope(t *testing.T) {
	h, env := newTestHandler(t)
	admin := env.AddUser(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	amit := env.AddUser(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	for _, target := range []string{"Patna", "Gaya", models.AllBihar} {
		_, _, err := env.Bulletin.CreateMeeting(context.Background(), &admin, bulletin.MeetingInput{
			Title: "Meeting for " + target, Date: "2026-11-02", Time: "10:30",
			MeetingType: models.MeetingWhatsApp, TargetDistrict: target,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest("GET", "/meetings"), testutil.SessionFor(amit)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Meeting for Patna")
	rec.AssertContains(t, "Meeting for "+models.AllBihar)
	rec.AssertNotContains(t, "Meeting for Gaya")

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest("GET", "/meetings"), testutil.SessionFor(admin)))
	rec.AssertContains(t, "Meeting for Gaya")
}

func TestServeView_HiddenDistrict(t *testing.T) {
	h, env := newTestHandler(t)
	admin := env.AddUser(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	amit := env.AddUser(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	m, _, err := env.Bulletin.CreateMeeting(context.Background(), &admin, bulletin.MeetingInput{
		Title: "Gaya block baithak", Date: "2026-11-02", Time: "10:30",
		MeetingType: models.MeetingWhatsApp, TargetDistrict: "Gaya",
	})
	if err != nil {
		t.Fatal(err)
	}

	view := func(u models.User) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/meetings/x"), "id", m.ID.Hex())
		rec := testutil.NewRecorder()
		h.ServeView(rec, testutil.WithUser(req, testutil.SessionFor(u)))
		return rec
	}
	view(amit).AssertStatus(t, http.StatusNotFound)
	rec := view(admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Gaya block baithak")
}
