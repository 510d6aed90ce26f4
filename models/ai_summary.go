package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalysisResult is the structured half of a generated summary.
type AnalysisResult struct {
	MainPoints     []string `bson:"main_points" json:"mainPoints"`
	Impact         string   `bson:"impact" json:"impact"`
	Complexity     string   `bson:"complexity" json:"complexity"` // low | medium | high
	Stakeholders   []string `bson:"stakeholders" json:"stakeholders"`
	Timeline       string   `bson:"timeline" json:"timeline"`
	Risks          []string `bson:"risks" json:"risks"`
	Opportunities  []string `bson:"opportunities" json:"opportunities"`
	Recommendation string   `bson:"recommendation" json:"recommendation"`
	Confidence     float64  `bson:"confidence" json:"confidence"` // 0-100
}

// AISummary stores one AI-generated summary per (entity_type, entity_id).
// Collection: ai_summaries (unique index uniq_entity)
type AISummary struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	EntityType   EntityType         `bson:"entity_type" json:"entity_type"`
	EntityID     string             `bson:"entity_id" json:"entity_id"`
	HumanSummary string             `bson:"human_summary" json:"human_summary"`
	SummaryData  AnalysisResult     `bson:"summary_data" json:"summary_data"`
	ModelName    string             `bson:"model_name" json:"model_name"`
	GeneratedAt  time.Time          `bson:"generated_at" json:"generated_at"`
}
