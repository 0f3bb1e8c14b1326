// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/sangathan/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth   = "auth"
	CategoryAdmin  = "admin"
	CategorySystem = "system"
)

// Auth event types
const (
	EventLoginSuccess            = "login_success"
	EventLoginFailedUserNotFound = "login_failed_user_not_found"
	EventLoginFailedSuspended    = "login_failed_suspended"
	EventLoginFailedRateLimit    = "login_failed_rate_limit"
	EventSignup                  = "signup"
	EventLogout                  = "logout"
)

// Admin event types
const (
	EventUserApproved   = "user_approved"
	EventUserRejected   = "user_rejected"
	EventEditSubmitted  = "edit_submitted"
	EventEditApproved   = "edit_approved"
	EventEditRejected   = "edit_rejected"
	EventStatusChanged  = "status_changed"
	EventUserDeleted    = "user_deleted"
	EventUserPromoted   = "user_promoted"
	EventBadgeAssigned  = "badge_assigned"
	EventMemberAdded    = "member_added"
	EventNoticeCreated  = "notice_created"
	EventMeetingCreated = "meeting_created"
	EventPostDeleted    = "post_deleted"
	EventAccessDenied   = "access_denied"
)

// System event types
const (
	EventRetentionSweep = "retention_sweep"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	UserID   *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected user
	ActorID  *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who acted
	District string              `bson:"district,omitempty" json:"district,omitempty"`

	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"-"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields match everything.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	Category  string
	EventType string
	District  string
	Since     *time.Time
	Limit     int64
}

func (f QueryFilter) limit() int64 {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

// Store persists audit events in MongoDB.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the time, user and type indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: options.Index().SetName("timestamp")},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("user_timestamp")},
		{Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "event_type", Value: 1},
			{Key: "timestamp", Value: -1},
		}, Options: options.Index().SetName("category_type_timestamp")},
	}
	return indexes.Ensure(ctx, s.c, models)
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	stamp(&event)
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns events matching filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = filter.UserID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.District != "" {
		query["district"] = filter.District
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(filter.limit())

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func stamp(e *Event) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}
