package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/sangathan/internal/app/system/indexes"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateMobile is returned when another user already has the mobile number.
	ErrDuplicateMobile = errors.New("a user with this mobile number already exists")
	// ErrVersionConflict is returned when the record changed since it was read.
	ErrVersionConflict = errors.New("user was modified concurrently")
	errBadRole         = errors.New(`role must be "SUPER_ADMIN"|"SUB_ADMIN"|"MEMBER"`)
	errBadStatus       = errors.New(`status must be "PENDING"|"APPROVED"|"REJECTED"|"SUSPENDED"|"DELETED"`)
)

// ListFilter selects directory rows. An empty District means every district.
// Statuses restricts to the given statuses; empty means any.
type ListFilter struct {
	District string
	Statuses []string
	Search   string
}

// StatusCount is the number of users with Status in District.
type StatusCount struct {
	Status   string `bson:"status"`
	District string `bson:"district"`
	N        int64  `bson:"n"`
}

// Store is the MongoDB-backed user store.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique mobile index and the listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_mobile")},
		{Keys: bson.D{{Key: "district", Value: 1}, {Key: "status", Value: 1}, {Key: "name_ci", Value: 1}}, Options: options.Index().SetName("district_status_name")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
	})
}

// prepare normalizes fields and validates role and status.
func prepare(u *models.User) error {
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.FatherName = normalize.Name(u.FatherName)
	u.Mobile = normalize.Mobile(u.Mobile)
	u.District = normalize.District(u.District)
	u.Designation = normalize.Name(u.Designation)
	u.DesignationCI = text.Fold(u.Designation)
	u.Jurisdiction = normalize.Name(u.Jurisdiction)
	if !models.IsValidRole(u.Role) {
		return errBadRole
	}
	if !models.IsValidStatus(u.Status) {
		return errBadStatus
	}
	return nil
}

// Create inserts a new user after normalizing fields. The ID, timestamps and
// version are assigned here.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 1

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateMobile
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByMobile looks up exactly one user by normalized mobile number.
func (s *Store) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"mobile": normalize.Mobile(mobile)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update replaces u if its stored version still equals u.Version, then bumps
// the version. The returned record carries the new version.
func (s *Store) Update(ctx context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	expected := u.Version
	u.Version = expected + 1
	u.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID, "version": expected}, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateMobile
		}
		return models.User{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": u.ID})
		if err != nil {
			return models.User{}, err
		}
		if n == 0 {
			return models.User{}, ErrNotFound
		}
		return models.User{}, ErrVersionConflict
	}
	return u, nil
}

// Delete physically removes the user.
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

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// List returns users matching f, ordered by name.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	filter := bson.M{}
	if f.District != "" {
		filter["district"] = f.District
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if q := text.Fold(f.Search); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: ""}
		filter["$or"] = bson.A{
			bson.M{"name_ci": rx},
			bson.M{"designation_ci": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

// ReviewQueue returns users awaiting a signup decision or carrying an edit
// proposal, oldest first. An empty district means every district.
func (s *Store) ReviewQueue(ctx context.Context, district string) ([]models.User, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"status": models.StatusPending},
			bson.M{"pending_changes": bson.M{"$exists": true, "$ne": nil}},
		},
	}
	if district != "" {
		filter["district"] = district
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}})
	return s.find(ctx, filter, opts)
}

// StatusCounts groups users by status and district. An empty district
// means every district.
func (s *Store) StatusCounts(ctx context.Context, district string) ([]StatusCount, error) {
	match := bson.M{}
	if district != "" {
		match["district"] = district
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"status": "$status", "district": "$district"},
			"n":   bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"status":   "$_id.status",
			"district": "$_id.district",
			"n":        1,
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []StatusCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
