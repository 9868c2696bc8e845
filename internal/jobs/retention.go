// Package jobs registers the service's built-in maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/checkpoint"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/config"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/database"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/probes"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/processor"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/runner"
	"github.com/ArtAhmetaj/adaptive-backfill/internal/telemetry"
)

// retentionState tracks cumulative progress of the retention backfill
type retentionState struct {
	Deleted int64 `bson:"deleted" json:"deleted"`
}

// RegisterRetention registers the run-history retention backfill. It deletes
// run records older than the retention window in bounded batches, pausing
// between batches and halting when the database itself degrades. The
// checkpoint lets a halted or failed pass resume without rescanning.
func RegisterRetention(registry *runner.Registry, db *database.MongoDB, store checkpoint.Store, cfg *config.Config) error {
	collection := db.GetCollection(database.CollectionRunHistory)
	batchSize := cfg.HistoryBatchSize

	handler := func(ctx context.Context, state any) model.BatchResult {
		deleted := deletedSoFar(state)
		cutoff := time.Now().UTC().Add(-cfg.HistoryRetention)

		opts := options.Find().
			SetProjection(bson.M{"_id": 1}).
			SetSort(bson.D{{Key: "started_at", Value: 1}}).
			SetLimit(int64(batchSize))

		cursor, err := collection.Find(ctx, bson.M{"started_at": bson.M{"$lt": cutoff}}, opts)
		if err != nil {
			return model.BatchError(fmt.Errorf("failed to find expired runs: %w", err))
		}

		var docs []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return model.BatchError(fmt.Errorf("failed to decode expired runs: %w", err))
		}
		if len(docs) == 0 {
			return model.BatchDone()
		}

		ids := make([]primitive.ObjectID, 0, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}

		result, err := collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return model.BatchError(fmt.Errorf("failed to delete expired runs: %w", err))
		}

		return model.BatchOK(retentionState{Deleted: deleted + result.DeletedCount})
	}

	return registry.Register(&runner.Definition{
		Name:     "run_history_retention",
		Schedule: "0 3 * * *",
		Config: processor.Config{
			Mode: model.ModeAsync,
			Probes: []model.Probe{
				probes.PingProbe(db.Client),
				probes.ReplicationLagProbe(db.Client, 30*time.Second),
			},
			BatchHandler:    handler,
			InitialState:    retentionState{},
			Checkpoint:      store,
			Delay:           time.Second,
			ProbeTimeout:    cfg.ProbeTimeout,
			PollInterval:    cfg.PollInterval,
			TelemetryPrefix: []string{"backfill", "run_history_retention"},
			TelemetrySink:   telemetry.SlogSink{},
		},
	})
}

// deletedSoFar reads the cumulative count from a fresh state or one that
// round-tripped through the checkpoint store
func deletedSoFar(state any) int64 {
	switch s := state.(type) {
	case retentionState:
		return s.Deleted
	case bson.M:
		return coerceInt64(s["deleted"])
	case map[string]any:
		return coerceInt64(s["deleted"])
	default:
		return 0
	}
}

func coerceInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
