package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legispuls/models"
)

// ErrNotFound is returned when a point lookup matches no document.
var ErrNotFound = errors.New("document not found")

type AISummaryRepository struct {
	col *mongo.Collection
}

func NewAISummaryRepository(db *mongo.Database) *AISummaryRepository {
	return &AISummaryRepository{col: db.Collection("ai_summaries")}
}

// FindByEntity returns the cached summary for (entityType, entityID).
func (r *AISummaryRepository) FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AISummary, error) {
	var s models.AISummary
	err := r.col.FindOne(ctx, bson.M{"entity_type": entityType, "entity_id": entityID}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Insert stores a new summary. The unique index on (entity_type, entity_id)
// rejects a second insert for the same key.
func (r *AISummaryRepository) Insert(ctx context.Context, doc models.AISummary) (*mongo.InsertOneResult, error) {
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return r.col.InsertOne(ctx, doc)
}

// UpsertByEntity creates or overwrites the summary for (entity_type,
// entity_id). The original _id and created_at survive an overwrite;
// updated_at is refreshed.
func (r *AISummaryRepository) UpsertByEntity(ctx context.Context, doc *models.AISummary) (*mongo.UpdateResult, error) {
	now := time.Now()
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = now
	}

	filter := bson.M{"entity_type": doc.EntityType, "entity_id": doc.EntityID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at":  now,
			"entity_type": doc.EntityType,
			"entity_id":   doc.EntityID,
		},
		"$set": bson.M{
			"updated_at":    now,
			"human_summary": doc.HumanSummary,
			"summary_data":  doc.SummaryData,
			"model_name":    doc.ModelName,
			"generated_at":  doc.GeneratedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}
