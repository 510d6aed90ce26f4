package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legispuls/models"
)

type ConsultationRepository struct {
	col *mongo.Collection
}

func NewConsultationRepository(db *mongo.Database) *ConsultationRepository {
	return &ConsultationRepository{col: db.Collection("consultations")}
}

// UpsertBySourceURL upserts a consultation uniquely identified by source_url.
// Comments are not touched here; they accumulate through their own flow.
func (r *ConsultationRepository) UpsertBySourceURL(ctx context.Context, c *models.Consultation) (*mongo.UpdateResult, error) {
	now := time.Now()
	filter := bson.M{"source_url": c.SourceURL}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": now,
			"comments":   []models.Comment{},
		},
		"$set": bson.M{
			"updated_at":   now,
			"entity_type":  c.EntityType,
			"title":        c.Title,
			"description":  c.Description,
			"institution":  c.Institution,
			"source_name":  c.SourceName,
			"source_url":   c.SourceURL,
			"published_at": c.PublishedAt,
			"deadline":     c.Deadline,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// List returns a page of consultations, newest first, optionally filtered
// by entity type.
func (r *ConsultationRepository) List(ctx context.Context, entityType models.EntityType, page, pageSize int) ([]models.Consultation, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := bson.M{}
	if entityType != "" {
		filter["entity_type"] = entityType
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []models.Consultation
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID returns one consultation by its ObjectID hex.
func (r *ConsultationRepository) GetByID(ctx context.Context, hexID string) (*models.Consultation, error) {
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrNotFound
	}
	var c models.Consultation
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// AppendComment pushes a citizen comment onto a consultation.
func (r *ConsultationRepository) AppendComment(ctx context.Context, hexID string, comment models.Comment) error {
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
