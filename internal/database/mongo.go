// Package database provides MongoDB client bootstrap and collection access.
package database

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. Users, profiles and posts are independently keyed; the
// store enforces no relationships between them beyond the unique indexes
// created in EnsureIndexes.
const (
	UsersCollection    = "users"
	ProfilesCollection = "profiles"
	PostsCollection    = "posts"
)

const connectTimeout = 10 * time.Second

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the unique indexes backing the data invariants:
// one account per email, one profile per user.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection(ProfilesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("profiles user index: %w", err)
	}

	_, err = db.Collection(ProfilesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("profiles username index: %w", err)
	}

	return nil
}

// Disconnect closes the underlying client of the given database.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
