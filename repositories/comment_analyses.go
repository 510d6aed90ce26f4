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

type CommentAnalysisRepository struct {
	col *mongo.Collection
}

func NewCommentAnalysisRepository(db *mongo.Database) *CommentAnalysisRepository {
	return &CommentAnalysisRepository{col: db.Collection("ai_comment_analyses")}
}

func (r *CommentAnalysisRepository) FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AICommentAnalysis, error) {
	var a models.AICommentAnalysis
	err := r.col.FindOne(ctx, bson.M{"entity_type": entityType, "entity_id": entityID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *CommentAnalysisRepository) UpsertByEntity(ctx context.Context, doc *models.AICommentAnalysis) (*mongo.UpdateResult, error) {
	now := time.Now()
	filter := bson.M{"entity_type": doc.EntityType, "entity_id": doc.EntityID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at":  now,
			"entity_type": doc.EntityType,
			"entity_id":   doc.EntityID,
		},
		"$set": bson.M{
			"updated_at":    now,
			"analysis_data": doc.AnalysisData,
			"comment_count": doc.CommentCount,
			"model_name":    doc.ModelName,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}
