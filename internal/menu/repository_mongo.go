package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/db"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(mdb *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: mdb.Collection(db.MenusCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, m *Menu) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Version = 1

	_, err := r.coll.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Duplicate("id", "menu already exists")
	}
	if err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Menu, error) {
	m := &Menu{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("menu", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find menu: %w", err)
	}
	return m, nil
}

func (r *MongoRepository) List(ctx context.Context, f ListFilter) ([]*Menu, error) {
	filter := bson.M{}
	if f.UploadedBy != "" {
		filter["uploadedBy"] = f.UploadedBy
	}
	if f.PublicOnly {
		filter["isPublic"] = true
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	return r.find(ctx, filter, opts)
}

// Nearby relies on the 2dsphere index on location; $near sorts by distance.
func (r *MongoRepository) Nearby(ctx context.Context, lng, lat, radius float64, limit int) ([]*Menu, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"$maxDistance": radius,
			},
		},
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Menu, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}
	defer cur.Close(ctx)

	out := []*Menu{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode menus: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, m *Menu) error {
	next := *m
	next.Version = m.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": m.ID, "version": m.Version}, &next)
	if err != nil {
		return fmt.Errorf("replace menu: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	m.Version, m.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}
