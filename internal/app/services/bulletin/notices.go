package bulletin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	meetingstore "github.com/dalemusser/sangathan/internal/app/store/meetings"
	poststore "github.com/dalemusser/sangathan/internal/app/store/posts"
	"github.com/dalemusser/sangathan/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NoticeInput is an admin notice. ExpiryHours 0 means the default.
type NoticeInput struct {
	Content     string
	ExpiryHours int
	Enhance     bool
}

// CreateNotice publishes a notice that expires after ExpiryHours. The
// returned bool reports whether the text was rewritten by the enhancer.
// Members are refused before anything is written.
func (s *Service) CreateNotice(ctx context.Context, actor *models.User, in NoticeInput) (models.Post, bool, error) {
	if err := s.authorize(ctx, actor, adminpolicy.CreateNotice, adminpolicy.None); err != nil {
		return models.Post{}, false, err
	}

	hours := in.ExpiryHours
	if hours == 0 {
		hours = models.DefaultNoticeExpiryHours
	}
	if !slices.Contains(models.NoticeExpiryHours, hours) {
		return models.Post{}, false, inputval.Invalid("expiry_hours", "Expiry must be 24, 48, 72 or 168 hours.")
	}
	content := htmlsanitize.PlainText(in.Content)
	if content == "" {
		return models.Post{}, false, inputval.Invalid("content", "Notice text is required.")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return models.Post{}, false, inputval.Invalid("content", fmt.Sprintf("Content must be at most %d characters.", MaxContentLength))
	}

	enhanced := false
	if in.Enhance && s.enhancer != nil {
		// Enhanced text gets the same checks as typed text; on failure the
		// original is published.
		if out, ok := s.enhancer.EnhanceNotice(ctx, content); ok {
			out = htmlsanitize.PlainText(out)
			if out != "" && utf8.RuneCountInString(out) <= MaxContentLength {
				content, enhanced = out, true
			}
		}
	}

	n, err := s.publishNotice(ctx, actor, content, hours, nil)
	if err != nil {
		return models.Post{}, false, err
	}
	s.audit.Admin(ctx, audit.EventNoticeCreated, actor.ID, nil, actor.District,
		map[string]string{"post_id": n.ID.Hex(), "expiry_hours": strconv.Itoa(hours)})
	return n, enhanced, nil
}

func (s *Service) publishNotice(ctx context.Context, actor *models.User, content string, hours int, meetingID *primitive.ObjectID) (models.Post, error) {
	now := s.now()
	expires := now.Add(time.Duration(hours) * time.Hour)
	p := models.Post{
		Content:          content,
		IsNotice:         true,
		ExpiresAt:        &expires,
		RelatedMeetingID: meetingID,
		CreatedAt:        now,
	}
	p.AuthorSnapshot(*actor)

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return models.Post{}, fmt.Errorf("create notice: %w", err)
	}
	s.metrics.NoticeCreated()
	s.log.Info("notice published", zap.String("post_id", created.ID.Hex()), zap.Int("expiry_hours", hours))
	return created, nil
}

// ActiveNotices returns unexpired notices, newest first.
func (s *Service) ActiveNotices(ctx context.Context) ([]models.Post, error) {
	return s.posts.ListActiveNotices(ctx, s.now())
}

// NoticeHistory returns every notice, expired or not, newest first.
func (s *Service) NoticeHistory(ctx context.Context) ([]models.Post, error) {
	return s.posts.ListNotices(ctx)
}

// HasUnread reports whether any active notice is missing from seen.
func HasUnread(active []models.Post, seen map[string]bool) bool {
	for _, p := range active {
		if !seen[p.ID.Hex()] {
			return true
		}
	}
	return false
}

// Opened is the result of opening a notice: the meeting it announces when
// that meeting still exists, otherwise just the notice.
type Opened struct {
	Notice  models.Post     `json:"notice"`
	Meeting *models.Meeting `json:"meeting,omitempty"`
}

// Redirect reports whether the caller should show the meeting.
func (o Opened) Redirect() bool { return o.Meeting != nil }

// OpenNotice resolves notice id for viewer. The linked meeting is attached
// only when viewer may see it; otherwise the notice opens on its own.
func (s *Service) OpenNotice(ctx context.Context, viewer *models.User, id primitive.ObjectID) (Opened, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			return Opened{}, ErrNoticeNotFound
		}
		return Opened{}, err
	}
	if !p.IsNotice {
		return Opened{}, ErrNoticeNotFound
	}
	out := Opened{Notice: *p}
	if p.RelatedMeetingID != nil {
		m, err := s.meetings.GetByID(ctx, *p.RelatedMeetingID)
		switch {
		case err == nil:
			if viewer.Role == models.RoleSuperAdmin || m.VisibleTo(viewer.District) {
				out.Meeting = m
			}
		case errors.Is(err, meetingstore.ErrNotFound):
		default:
			return Opened{}, err
		}
	}
	return out, nil
}
