package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewUser builds an unsaved user with sensible defaults.
func NewUser(name, mobile, district, role, status string) models.User {
	now := time.Now().UTC()
	return models.User{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		FatherName:    "Father of " + name,
		Mobile:        mobile,
		District:      district,
		Designation:   "Karyakarta",
		DesignationCI: text.Fold("Karyakarta"),
		Role:          role,
		Status:        status,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Fixtures inserts test records straight into a MongoDB test database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user built by NewUser.
func (f *Fixtures) CreateUser(ctx context.Context, name, mobile, district, role, status string) models.User {
	f.t.Helper()
	u := NewUser(name, mobile, district, role, status)
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateNotice inserts a notice that expires after ttl.
func (f *Fixtures) CreateNotice(ctx context.Context, author models.User, content string, ttl time.Duration) models.Post {
	f.t.Helper()
	now := time.Now().UTC()
	exp := now.Add(ttl)
	p := models.Post{ID: primitive.NewObjectID(), Content: content, IsNotice: true, ExpiresAt: &exp, CreatedAt: now}
	p.AuthorSnapshot(author)
	if _, err := f.db.Collection("posts").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test notice: %v", err)
	}
	return p
}
