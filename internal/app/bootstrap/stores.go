// internal/app/bootstrap/stores.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	meetingstore "github.com/dalemusser/sangathan/internal/app/store/meetings"
	poststore "github.com/dalemusser/sangathan/internal/app/store/posts"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditStore records and queries audit events.
type AuditStore interface {
	Log(ctx context.Context, event audit.Event) error
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Stores are the persistence backends the services run on. Mongo and memory
// stores both satisfy these interfaces.
type Stores struct {
	Users    membership.UserRepo
	Posts    bulletin.PostRepo
	Meetings bulletin.MeetingRepo
	Audit    AuditStore

	// indexSets is empty for the memory backend.
	indexSets []indexes.Set
}

// auditMemCap bounds the in-memory audit log.
const auditMemCap = 10000

// MongoStores returns stores backed by db.
func MongoStores(db *mongo.Database) Stores {
	users := userstore.New(db)
	posts := poststore.New(db)
	meetings := meetingstore.New(db)
	events := audit.New(db)
	return Stores{
		Users:    users,
		Posts:    posts,
		Meetings: meetings,
		Audit:    events,
		indexSets: []indexes.Set{
			{Collection: "users", Ensure: users.EnsureIndexes},
			{Collection: "posts", Ensure: posts.EnsureIndexes},
			{Collection: "meetings", Ensure: meetings.EnsureIndexes},
			{Collection: "audit_events", Ensure: events.EnsureIndexes},
		},
	}
}

// MemoryStores returns empty in-process stores.
func MemoryStores() Stores {
	return Stores{
		Users:    userstore.NewMem(),
		Posts:    poststore.NewMem(),
		Meetings: meetingstore.NewMem(),
		Audit:    audit.NewMem(auditMemCap),
	}
}
