// Package bulletin implements the feed: posts, expiring notices, meetings
// and the retention sweep.
package bulletin

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	meetingstore "github.com/dalemusser/sangathan/internal/app/store/meetings"
	poststore "github.com/dalemusser/sangathan/internal/app/store/posts"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultRetentionDays          = 15
	DefaultEmergencyRetentionDays = 3
	DefaultStorageLimitGB         = 4.3

	// MeetingNoticeHours is the lifetime of the notice announcing a meeting.
	MeetingNoticeHours = 72
	MaxContentLength   = 2000
)

var (
	ErrPostNotFound    = errors.New("bulletin: post not found")
	ErrNoticeNotFound  = errors.New("bulletin: notice not found")
	ErrMeetingNotFound = errors.New("bulletin: meeting not found")
)

// PostRepo is satisfied by poststore.Store and poststore.MemStore.
type PostRepo interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListRegular(ctx context.Context, limit int) ([]models.Post, error)
	ListNotices(ctx context.Context) ([]models.Post, error)
	ListActiveNotices(ctx context.Context, now time.Time) ([]models.Post, error)
	AddLikes(ctx context.Context, id primitive.ObjectID, delta int) (int, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteRegularBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MeetingRepo is satisfied by meetingstore.Store and meetingstore.MemStore.
type MeetingRepo interface {
	Create(ctx context.Context, m models.Meeting) (models.Meeting, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Meeting, error)
	List(ctx context.Context, district string) ([]models.Meeting, error)
}

// Enhancer polishes notice text. It returns the input and false when it
// cannot help.
type Enhancer interface {
	EnhanceNotice(ctx context.Context, text string) (string, bool)
}

type Config struct {
	RetentionDays          int
	EmergencyRetentionDays int
	StorageLimitGB         float64
}

type Service struct {
	posts    PostRepo
	meetings MeetingRepo
	media    *media.Service
	enhancer Enhancer
	audit    *auditlog.Logger
	metrics  *metrics.Metrics
	log      *zap.Logger
	cfg      Config
	now      func() time.Time
}

func New(posts PostRepo, meetings MeetingRepo, mediaSvc *media.Service, enhancer Enhancer, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger, cfg Config) *Service {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if cfg.EmergencyRetentionDays <= 0 {
		cfg.EmergencyRetentionDays = DefaultEmergencyRetentionDays
	}
	if cfg.StorageLimitGB <= 0 {
		cfg.StorageLimitGB = DefaultStorageLimitGB
	}
	return &Service{
		posts:    posts,
		meetings: meetings,
		media:    mediaSvc,
		enhancer: enhancer,
		audit:    audit,
		metrics:  m,
		log:      logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) authorize(ctx context.Context, actor *models.User, action adminpolicy.Action, target adminpolicy.Target) error {
	d := adminpolicy.Authorize(actor, action, target)
	if d.Allowed {
		return nil
	}
	if actor != nil {
		s.audit.Denied(ctx, actor.ID, string(action), d.Reason)
	}
	return d.Err(action)
}

// Sweep removes regular posts past the retention window. When media usage
// is over the storage limit the short emergency window applies. Notices are
// never swept so history stays complete.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	days := s.cfg.RetentionDays
	if s.media != nil {
		if over, used := s.media.OverLimit(ctx, s.cfg.StorageLimitGB); over {
			days = s.cfg.EmergencyRetentionDays
			s.log.Warn("storage over limit; using emergency retention",
				zap.Int64("used_bytes", used), zap.Int("days", days))
		}
	}
	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.posts.DeleteRegularBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.PostsSwept(n)
	s.audit.RetentionSweep(ctx, n, cutoff)
	return n, nil
}

func postErr(err error) error {
	if errors.Is(err, poststore.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

func meetingErr(err error) error {
	if errors.Is(err, meetingstore.ErrNotFound) {
		return ErrMeetingNotFound
	}
	return err
}
