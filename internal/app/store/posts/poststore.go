package poststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sangathan/internal/app/system/indexes"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no post matches.
var ErrNotFound = errors.New("post not found")

// Store is the MongoDB-backed post store.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// EnsureIndexes creates the feed and notice indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_notice", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("notice_created")},
		{Keys: bson.D{{Key: "is_notice", Value: 1}, {Key: "expires_at", Value: 1}}, Options: options.Index().SetName("notice_expiry")},
	})
}

// Create inserts p, assigning ID and CreatedAt when unset.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// GetByID loads a post.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListRegular returns up to limit non-notice posts, newest first.
func (s *Store) ListRegular(ctx context.Context, limit int) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{"is_notice": false}, opts)
}

// ListNotices returns every notice, newest first.
func (s *Store) ListNotices(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return s.find(ctx, bson.M{"is_notice": true}, opts)
}

// ListActiveNotices returns notices with expires_at after now, newest first.
func (s *Store) ListActiveNotices(ctx context.Context, now time.Time) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return s.find(ctx, bson.M{"is_notice": true, "expires_at": bson.M{"$gt": now}}, opts)
}

// AddLikes adjusts the like counter by delta without letting it go below zero
// and returns the new count.
func (s *Store) AddLikes(ctx context.Context, id primitive.ObjectID, delta int) (int, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["likes"] = bson.M{"$gte": -delta}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"likes": delta}}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		cur, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return 0, gerr
		}
		return cur.Likes, nil
	}
	if err != nil {
		return 0, err
	}
	return p.Likes, nil
}

// Delete removes a post.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRegularBefore removes non-notice posts created before cutoff.
func (s *Store) DeleteRegularBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"is_notice": false, "created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
