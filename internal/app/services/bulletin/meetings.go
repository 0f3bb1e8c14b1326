package bulletin

import (
	"context"
	"fmt"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"github.com/dalemusser/sangathan/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingInput schedules a meeting.
type MeetingInput struct {
	Title          string `validate:"required,max=200" label:"Title"`
	Date           string `validate:"required,datetime=2006-01-02" label:"Date"`
	Time           string `validate:"required,datetime=15:04" label:"Time"`
	MeetingType    string `validate:"required,oneof=physical whatsapp virtual" label:"Meeting type"`
	Venue          string `validate:"required_if=MeetingType physical,max=300" label:"Venue"`
	Link           string `validate:"required_if=MeetingType virtual,omitempty,httpurl" label:"Link"`
	Agenda         string `validate:"max=2000" label:"Agenda"`
	TargetDistrict string `validate:"meetingtarget" label:"Target district"`
}

// NoticeText is the announcement posted for a new meeting.
func NoticeText(m *models.Meeting) string {
	return fmt.Sprintf("NEW EVENT: %s on %s at %s. Location: %s. Target: %s",
		m.Title, m.Date, m.Time, m.Location(), m.TargetDistrict)
}

// CreateMeeting stores a meeting and announces it with a linked notice.
func (s *Service) CreateMeeting(ctx context.Context, actor *models.User, in MeetingInput) (models.Meeting, models.Post, error) {
	if err := s.authorize(ctx, actor, adminpolicy.CreateMeeting, adminpolicy.None); err != nil {
		return models.Meeting{}, models.Post{}, err
	}

	in.Title = htmlsanitize.PlainText(in.Title)
	in.Agenda = htmlsanitize.PlainText(in.Agenda)
	in.Venue = htmlsanitize.PlainText(in.Venue)
	in.Link = normalize.QueryParam(in.Link)
	if in.TargetDistrict != models.AllBihar {
		in.TargetDistrict = normalize.District(in.TargetDistrict)
	}
	if in.MeetingType == "" {
		in.MeetingType = models.MeetingPhysical
	}
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Meeting{}, models.Post{}, err
	}

	m := models.Meeting{
		Title:          in.Title,
		Date:           in.Date,
		Time:           in.Time,
		MeetingType:    in.MeetingType,
		Agenda:         in.Agenda,
		TargetDistrict: in.TargetDistrict,
		CreatedBy:      actor.ID,
		CreatedAt:      s.now(),
	}
	switch m.MeetingType {
	case models.MeetingPhysical:
		m.Venue = in.Venue
	case models.MeetingVirtual:
		m.Link = in.Link
	}

	created, err := s.meetings.Create(ctx, m)
	if err != nil {
		return models.Meeting{}, models.Post{}, fmt.Errorf("create meeting: %w", err)
	}
	id := created.ID
	notice, err := s.publishNotice(ctx, actor, NoticeText(&created), MeetingNoticeHours, &id)
	if err != nil {
		return created, models.Post{}, err
	}
	s.audit.Admin(ctx, audit.EventMeetingCreated, actor.ID, nil, created.TargetDistrict,
		map[string]string{"meeting_id": id.Hex(), "notice_id": notice.ID.Hex()})
	return created, notice, nil
}

// ListMeetings returns the meetings viewer should see: every meeting for the
// super admin, otherwise the viewer's district plus All Bihar.
func (s *Service) ListMeetings(ctx context.Context, viewer *models.User) ([]models.Meeting, error) {
	district := viewer.District
	if viewer.Role == models.RoleSuperAdmin {
		district = ""
	}
	return s.meetings.List(ctx, district)
}

// GetMeeting returns meeting id if viewer may see it.
func (s *Service) GetMeeting(ctx context.Context, viewer *models.User, id primitive.ObjectID) (*models.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, meetingErr(err)
	}
	if viewer.Role != models.RoleSuperAdmin && !m.VisibleTo(viewer.District) {
		return nil, ErrMeetingNotFound
	}
	return m, nil
}
