package dish

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
	return &MongoRepository{coll: mdb.Collection(db.DishesCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, d *Dish) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	d.Version = 1

	_, err := r.coll.InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Duplicate("id", "dish already exists")
	}
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Dish, error) {
	d := &Dish{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("dish", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find dish: %w", err)
	}
	return d, nil
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) ([]*Dish, error) {
	if len(ids) == 0 {
		return []*Dish{}, nil
	}

	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Dish, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}
	out := make([]*Dish, 0, len(found))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *MongoRepository) List(ctx context.Context, f Filter) ([]*Dish, error) {
	filter := bson.M{}
	if f.MenuID != "" {
		filter["menuId"] = f.MenuID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Tag != "" {
		filter["dietaryTags"] = f.Tag
	}
	if f.MinScore != nil {
		filter["healthScore"] = bson.M{"$gte": *f.MinScore}
	}
	if f.Available != nil {
		filter["isAvailable"] = *f.Available
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

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Dish, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find dishes: %w", err)
	}
	defer cur.Close(ctx)

	out := []*Dish{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode dishes: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, d *Dish) error {
	next := *d
	next.Version = d.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID, "version": d.Version}, &next)
	if err != nil {
		return fmt.Errorf("replace dish: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, d.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	d.Version, d.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("dish", id)
	}
	return nil
}
