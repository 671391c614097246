package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dandantas/physicsai/internal/model"
)

// ErrRecordNotFound is returned when no archived render matches the query
var ErrRecordNotFound = errors.New("render record not found")

// RenderRepository archives terminal render outcomes
type RenderRepository struct {
	collection *mongo.Collection
}

// NewRenderRepository creates a new render history repository
func NewRenderRepository(db *MongoDB) *RenderRepository {
	return &RenderRepository{
		collection: db.GetCollection(CollectionRenderHistory),
	}
}

// Create inserts a new render history record
func (r *RenderRepository) Create(ctx context.Context, record *model.RenderRecord) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, record)
	if err != nil {
		return fmt.Errorf("failed to create render record: %w", err)
	}

	return nil
}

// GetByJobID retrieves a render record by job id
func (r *RenderRepository) GetByJobID(ctx context.Context, jobID string) (*model.RenderRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record model.RenderRecord
	err := r.collection.FindOne(ctxTimeout, bson.M{"job_id": jobID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get render record: %w", err)
	}

	return &record, nil
}

// List retrieves render history with filtering and pagination, most recent first
func (r *RenderRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.RenderRecord, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count render records: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "completed_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list render records: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var records []model.RenderRecord
	if err := cursor.All(ctxTimeout, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode render records: %w", err)
	}

	return records, total, nil
}
