package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	meetingstore "github.com/dalemusser/sangathan/internal/app/store/meetings"
	poststore "github.com/dalemusser/sangathan/internal/app/store/posts"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

// Env wires the services over in-memory stores for handler tests.
type Env struct {
	Users    *userstore.MemStore
	Posts    *poststore.MemStore
	Meetings *meetingstore.MemStore
	Audit    *audit.MemStore

	Media    *media.Service
	AuditLog *auditlog.Logger
	Members  *membership.Service
	Bulletin *bulletin.Service
	Sessions *auth.SessionManager
}

// NewEnv builds an Env. enhancer may be nil.
func NewEnv(t *testing.T, enhancer bulletin.Enhancer) *Env {
	t.Helper()
	logger := zap.NewNop()
	e := &Env{
		Users:    userstore.NewMem(),
		Posts:    poststore.NewMem(),
		Meetings: meetingstore.NewMem(),
		Audit:    audit.NewMem(500),
	}
	e.Media = media.NewService(&media.DataURLStore{}, nil, logger)
	e.AuditLog = auditlog.New(e.Audit, logger, auditlog.Config{Auth: "db", Admin: "db"})
	e.Members = membership.New(e.Users, e.Media, e.AuditLog, nil, logger, membership.Config{})
	e.Bulletin = bulletin.New(e.Posts, e.Meetings, e.Media, enhancer, e.AuditLog, nil, logger, bulletin.Config{})
	e.Sessions = NewSessionManager(t)
	e.Sessions.SetUserFetcher(userstore.NewFetcher(e.Users))
	return e
}

// NewSessionManager returns a cookie session manager with a test key.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

// AddUser stores a user and returns it.
func (e *Env) AddUser(t *testing.T, name, mobile, district, role, status string) models.User {
	t.Helper()
	u, err := e.Users.Create(context.Background(), NewUser(name, mobile, district, role, status))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return u
}

// Reload fetches the stored copy of u.
func (e *Env) Reload(t *testing.T, u models.User) models.User {
	t.Helper()
	got, err := e.Users.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload %s: %v", u.Name, err)
	}
	return *got
}

// AuditEvents returns the stored audit events of eventType.
func (e *Env) AuditEvents(t *testing.T, eventType string) []audit.Event {
	t.Helper()
	events, err := e.Audit.Query(context.Background(), audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	return events
}

// AddNotice stores a notice by author that expires after ttl. A negative ttl
// gives an already expired notice.
func (e *Env) AddNotice(t *testing.T, author models.User, content string, ttl time.Duration) models.Post {
	t.Helper()
	now := time.Now().UTC()
	exp := now.Add(ttl)
	p := models.Post{Content: content, IsNotice: true, ExpiresAt: &exp, CreatedAt: now}
	p.AuthorSnapshot(author)
	created, err := e.Posts.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create notice: %v", err)
	}
	return created
}
