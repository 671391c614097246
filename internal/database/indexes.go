package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	collection := db.GetCollection(CollectionRenderHistory)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_job_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "completed_at", Value: -1}},
			Options: options.Index().SetName("idx_completed_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "completed_at", Value: -1}},
			Options: options.Index().SetName("idx_status_completed_at"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create render history indexes: %w", err)
	}

	slog.Info("Successfully created all MongoDB indexes")
	return nil
}
