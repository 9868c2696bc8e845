package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates the indexes the service relies on
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// checkpoints: one document per job name
	checkpointIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.GetCollection(CollectionCheckpoints).Indexes().CreateMany(indexCtx, checkpointIndexes); err != nil {
		return fmt.Errorf("failed to create checkpoint indexes: %w", err)
	}

	// run_history: queried by job and run id, listed newest-first
	runIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "job", Value: 1}, {Key: "started_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
	}
	if _, err := db.GetCollection(CollectionRunHistory).Indexes().CreateMany(indexCtx, runIndexes); err != nil {
		return fmt.Errorf("failed to create run history indexes: %w", err)
	}

	slog.Info("Database indexes created")
	return nil
}
