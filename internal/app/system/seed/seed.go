// Package seed loads the sample cell used for demos and local development:
// two super admins, members in Patna and Gaya, one pending signup, a state
// meeting with its notice, and a feed post.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
}

type Meetings interface {
	Create(ctx context.Context, m models.Meeting) (models.Meeting, error)
}

// Result counts what Load inserted.
type Result struct {
	Users    int
	Meetings int
	Posts    int
	Skipped  bool
}

// SampleUsers is the seeded membership. The first entry doubles as the
// marker that seeding already happened.
var SampleUsers = []models.User{
	{
		Name: "Test Admin", FatherName: "System", Mobile: "9341749399", District: "Patna",
		Designation: "State President", Jurisdiction: "State Head",
		Role: models.RoleSuperAdmin, Status: models.StatusApproved, Badge: models.BadgeBlue,
	},
	{
		Name: "Test Member", FatherName: "Test Father", Mobile: "1234567890", District: "Gaya",
		Designation: "Karyakarta", Role: models.RoleMember, Status: models.StatusApproved,
	},
	{
		Name: "Ram Vilas (Legacy)", FatherName: "Late Leader", Mobile: "9876543210", District: "Patna",
		Designation: "Pradesh Adhyaksh", Jurisdiction: "State Head",
		Role: models.RoleSuperAdmin, Status: models.StatusApproved, Badge: models.BadgeBlue,
	},
	{
		Name: "Amit Kumar", FatherName: "Suresh Kumar", Mobile: "9123456789", District: "Patna",
		Designation: "Zila Adhyaksh", Jurisdiction: "Patna West",
		Role: models.RoleMember, Status: models.StatusApproved, Badge: models.BadgeGreen,
	},
	{
		Name: "Rahul Singh", FatherName: "Vijay Singh", Mobile: "9988776655", District: "Gaya",
		Designation: "General Secretary", Role: models.RoleMember, Status: models.StatusPending,
	},
}

// Load inserts the sample data unless the first sample user already exists.
func Load(ctx context.Context, users Users, posts Posts, meetings Meetings, logger *zap.Logger) (Result, error) {
	var res Result
	if _, err := users.GetByMobile(ctx, SampleUsers[0].Mobile); err == nil {
		res.Skipped = true
		logger.Info("sample data already present; skipping seed")
		return res, nil
	} else if !errors.Is(err, userstore.ErrNotFound) {
		return res, fmt.Errorf("check seed marker: %w", err)
	}

	byMobile := make(map[string]models.User, len(SampleUsers))
	for _, u := range SampleUsers {
		created, err := users.Create(ctx, u)
		if errors.Is(err, userstore.ErrDuplicateMobile) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Name, err)
		}
		byMobile[created.Mobile] = created
		res.Users++
	}

	legacy := byMobile["9876543210"]
	now := time.Now().UTC()

	m, err := meetings.Create(ctx, models.Meeting{
		Title:          "Strategy Session 2025",
		Date:           now.AddDate(0, 0, 7).Format("2006-01-02"),
		Time:           "14:00",
		Venue:          "Party Office, Patna",
		MeetingType:    models.MeetingPhysical,
		Agenda:         "Election Roadmap and booth management strategy.",
		TargetDistrict: models.AllBihar,
		CreatedBy:      legacy.ID,
		CreatedAt:      now,
	})
	if err != nil {
		return res, fmt.Errorf("seed meeting: %w", err)
	}
	res.Meetings++

	meetingID := m.ID
	expires := now.Add(7 * 24 * time.Hour)
	notice := models.Post{
		Content:          "URGENT: State Executive Meeting scheduled for next Monday. Click to view details.",
		Likes:            150,
		IsNotice:         true,
		ExpiresAt:        &expires,
		RelatedMeetingID: &meetingID,
		CreatedAt:        now,
	}
	notice.AuthorSnapshot(legacy)

	post := models.Post{
		Content:   "Membership drive successful in Muzaffarpur block today! Jai Bihar.",
		Likes:     45,
		CreatedAt: now.Add(-time.Hour),
	}
	post.AuthorSnapshot(byMobile["9123456789"])

	for _, p := range []models.Post{notice, post} {
		if _, err := posts.Create(ctx, p); err != nil {
			return res, fmt.Errorf("seed post: %w", err)
		}
		res.Posts++
	}

	logger.Info("sample data loaded",
		zap.Int("users", res.Users),
		zap.Int("meetings", res.Meetings),
		zap.Int("posts", res.Posts),
	)
	return res, nil
}
