package meetingstore

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

// ErrNotFound is returned when no meeting matches.
var ErrNotFound = errors.New("meeting not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meetings")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "target_district", Value: 1}, {Key: "date", Value: -1}},
		Options: options.Index().SetName("target_date"),
	}})
}

func (s *Store) Create(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Meeting, error) {
	var m models.Meeting
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns meetings ordered by date then time, latest first. An empty
// district returns every meeting; otherwise the district's meetings plus
// state-wide ones.
func (s *Store) List(ctx context.Context, district string) ([]models.Meeting, error) {
	filter := bson.M{}
	if district != "" {
		filter["target_district"] = bson.M{"$in": []string{district, models.AllBihar}}
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "time", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Meeting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
