package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection  = "users"
	MenusCollection  = "menus"
	DishesCollection = "dishes"
)

func ConnectMongo(ctx context.Context, uri, database string, logger *slog.Logger) (*mongo.Database, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI not set")
	}
	if database == "" {
		return nil, errors.New("MONGO_DATABASE not set")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo connection failed: %w", err)
	}

	logger.Info("connected to mongo", slog.String("database", database))

	mdb := client.Database(database)
	if err := ensureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create mongo indexes: %w", err)
	}

	return mdb, nil
}

func ensureIndexes(ctx context.Context, mdb *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		UsersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		MenusCollection: {
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		DishesCollection: {
			Keys: bson.D{{Key: "menuId", Value: 1}},
		},
	}

	for coll, model := range indexes {
		if _, err := mdb.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}
