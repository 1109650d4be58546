package user

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
)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(mdb *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: mdb.Collection(db.UsersCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Version = 1

	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Duplicate("email", "email already registered")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, id, bson.M{"_id": id})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, email, bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, key string, filter bson.M) (*User, error) {
	u := &User{}
	err := r.coll.FindOne(ctx, filter).Decode(u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *MongoRepository) Update(ctx context.Context, u *User) error {
	next := *u
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID, "version": u.Version}, &next)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Duplicate("email", "email already registered")
	}
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}

	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	u.Version, u.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}
