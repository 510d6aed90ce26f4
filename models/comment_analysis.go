package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SentimentBreakdown carries percentage shares of comment sentiment.
type SentimentBreakdown struct {
	Positive int    `bson:"positive" json:"positive"`
	Negative int    `bson:"negative" json:"negative"`
	Neutral  int    `bson:"neutral" json:"neutral"`
	Overall  string `bson:"overall" json:"overall"` // positive | negative | neutral
}

// KeyTheme is a recurring topic found across citizen comments.
type KeyTheme struct {
	Theme     string   `bson:"theme" json:"theme"`
	Count     int      `bson:"count" json:"count"`
	Sentiment string   `bson:"sentiment" json:"sentiment"`
	Examples  []string `bson:"examples" json:"examples"`
}

// Insight is a single observation derived from the comment set.
type Insight struct {
	Type          string  `bson:"type" json:"type"` // concern | suggestion | praise | issue
	Title         string  `bson:"title" json:"title"`
	Description   string  `bson:"description" json:"description"`
	Confidence    float64 `bson:"confidence" json:"confidence"`
	CommentsCount int     `bson:"comments_count" json:"commentsCount"`
}

// CommentsAnalysisResult is the structured output of the comment-analysis
// pipeline.
type CommentsAnalysisResult struct {
	Sentiment SentimentBreakdown `bson:"sentiment" json:"sentiment"`
	KeyThemes []KeyTheme         `bson:"key_themes" json:"keyThemes"`
	Insights  []Insight          `bson:"insights" json:"insights"`
	Summary   string             `bson:"summary" json:"summary"`
}

// AICommentAnalysis caches one comment analysis per (entity_type, entity_id).
// Collection: ai_comment_analyses (unique index uniq_entity)
type AICommentAnalysis struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
	EntityType   EntityType             `bson:"entity_type" json:"entity_type"`
	EntityID     string                 `bson:"entity_id" json:"entity_id"`
	AnalysisData CommentsAnalysisResult `bson:"analysis_data" json:"analysis_data"`
	CommentCount int                    `bson:"comment_count" json:"comment_count"`
	ModelName    string                 `bson:"model_name" json:"model_name"`
}
