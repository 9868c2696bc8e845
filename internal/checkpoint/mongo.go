package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/database"
)

// Mongo persists checkpoints in a MongoDB collection, upserting by job name.
// States round-trip through BSON: a struct saved here loads back as
// bson-decoded values (maps and primitives), not the original Go type.
type Mongo struct {
	collection *mongo.Collection
}

// NewMongo creates a mongo-backed checkpoint store
func NewMongo(db *database.MongoDB) *Mongo {
	return &Mongo{
		collection: db.GetCollection(database.CollectionCheckpoints),
	}
}

type checkpointDoc struct {
	Name      string    `bson:"name"`
	State     any       `bson:"state"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Save upserts the checkpoint document for the given name
func (m *Mongo) Save(ctx context.Context, name string, state any) error {
	filter := bson.M{"name": name}
	update := bson.M{
		"$set": bson.M{
			"state":      state,
			"updated_at": time.Now().UTC(),
		},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %s: %w", name, err)
	}
	return nil
}

// Load returns the persisted state for the given name, or ErrNotFound
func (m *Mongo) Load(ctx context.Context, name string) (any, error) {
	var doc checkpointDoc
	err := m.collection.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", name, err)
	}
	return doc.State, nil
}

// Delete removes the checkpoint document for the given name, if any
func (m *Mongo) Delete(ctx context.Context, name string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint %s: %w", name, err)
	}
	return nil
}
