package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a single citizen comment attached to a consultation project.
type Comment struct {
	Author  string    `bson:"author" json:"author"`
	Content string    `bson:"content" json:"content"`
	Date    time.Time `bson:"date" json:"date"`
	Rating  *int      `bson:"rating,omitempty" json:"rating,omitempty"`
}

// Consultation is a public consultation or pre-consultation project,
// ingested from the configured RSS feeds.
// Collection: consultations (unique index uniq_source_url)
type Consultation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	EntityType  EntityType         `bson:"entity_type" json:"entity_type"` // consultation | pre-consultation
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Institution string             `bson:"institution" json:"institution"`
	SourceName  string             `bson:"source_name" json:"source_name"`
	SourceURL   string             `bson:"source_url" json:"source_url"`
	PublishedAt time.Time          `bson:"published_at" json:"published_at"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Comments    []Comment          `bson:"comments" json:"comments"`
}
