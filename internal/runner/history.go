package runner

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/database"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// HistoryRepository persists run records in MongoDB
type HistoryRepository struct {
	collection *mongo.Collection
}

// NewHistoryRepository creates a run history repository
func NewHistoryRepository(db *database.MongoDB) *HistoryRepository {
	return &HistoryRepository{
		collection: db.GetCollection(database.CollectionRunHistory),
	}
}

// Create inserts a run record
func (r *HistoryRepository) Create(ctx context.Context, record *model.RunRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// GetByRunID returns one run record by its run ID
func (r *HistoryRepository) GetByRunID(ctx context.Context, runID string) (*model.RunRecord, error) {
	var record model.RunRecord
	err := r.collection.FindOne(ctx, bson.M{"run_id": runID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to fetch run record: %w", err)
	}
	return &record, nil
}

// List returns run records newest-first, optionally filtered by job name
func (r *HistoryRepository) List(ctx context.Context, job string, limit int) ([]model.RunRecord, error) {
	filter := bson.M{}
	if job != "" {
		filter["job"] = job
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]model.RunRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode run records: %w", err)
	}
	return records, nil
}
