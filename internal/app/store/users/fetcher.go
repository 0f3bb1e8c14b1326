package userstore

import (
	"context"

	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reader is the lookup the Fetcher needs; both Store and MemStore satisfy it.
type Reader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Fetcher implements auth.UserFetcher so every request sees the current
// record: a suspension, deletion or role change applies on the next request.
type Fetcher struct {
	users Reader
}

// NewFetcher creates a UserFetcher backed by r.
func NewFetcher(r Reader) *Fetcher {
	return &Fetcher{users: r}
}

// FetchUser returns nil when the user is missing, suspended, deleted, or the
// lookup fails.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByID(ctx, oid)
	if err != nil {
		return nil
	}
	if u.Status == models.StatusSuspended || u.Status == models.StatusDeleted {
		return nil
	}
	return auth.SessionUserFrom(u)
}
