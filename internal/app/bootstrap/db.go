// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/convenehq/convene/internal/app/system/indexes"
)

// ConnectDB establishes the MongoDB connection used by every store.
// The pool bounds come from app config; the connect timeout rides on
// the ctx WAFFLE passes in.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store relies on and runs the
// one-time migration for task documents written by the old schema.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	migrated, err := migrateScalarAssignees(ctx, deps.MongoDatabase)
	if err != nil {
		return fmt.Errorf("migrate task assignees: %w", err)
	}
	if migrated > 0 {
		logger.Info("normalized legacy task assignees", zap.Int64("tasks", migrated))
	}

	return nil
}

// migrateScalarAssignees rewrites task documents whose assignee field
// is a single ObjectID (the old schema) into the one-element array the
// current code expects. New documents always store an array, so after
// one pass this matches zero documents forever.
func migrateScalarAssignees(ctx context.Context, db *mongo.Database) (int64, error) {
	coll := db.Collection("tasks")

	cur, err := coll.Find(ctx, bson.M{"assignee_ids": bson.M{"$type": "objectId"}})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var migrated int64
	for cur.Next(ctx) {
		var doc struct {
			ID         primitive.ObjectID `bson:"_id"`
			AssigneeID primitive.ObjectID `bson:"assignee_ids"`
		}
		if err := cur.Decode(&doc); err != nil {
			return migrated, err
		}

		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID},
			bson.M{"$set": bson.M{"assignee_ids": []primitive.ObjectID{doc.AssigneeID}}})
		if err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, cur.Err()
}
