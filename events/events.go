package events

import (
	"time"

	"github.com/google/uuid"

	"legispuls/models"
)

// EventType identifies a domain event on the bus.
type EventType string

const (
	SummaryGenerated EventType = "ai.summary.generated"
	CommentsAnalyzed EventType = "ai.comments.analyzed"
)

// BaseEvent is the envelope shared by all events.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    "legispuls-api",
	}
}

// SummaryGeneratedEvent is emitted after a summary is produced and stored.
type SummaryGeneratedEvent struct {
	BaseEvent
	EntityType   models.EntityType `json:"entity_type"`
	EntityID     string            `json:"entity_id"`
	ModelName    string            `json:"model_name"`
	Regenerated  bool              `json:"regenerated"`
	HumanSummary string            `json:"human_summary"`
}

func NewSummaryGeneratedEvent(entityType models.EntityType, entityID, modelName string, regenerated bool, humanSummary string) SummaryGeneratedEvent {
	return SummaryGeneratedEvent{
		BaseEvent:    newBase(SummaryGenerated),
		EntityType:   entityType,
		EntityID:     entityID,
		ModelName:    modelName,
		Regenerated:  regenerated,
		HumanSummary: humanSummary,
	}
}

// CommentsAnalyzedEvent is emitted after a comment analysis is stored.
type CommentsAnalyzedEvent struct {
	BaseEvent
	EntityType   models.EntityType `json:"entity_type"`
	EntityID     string            `json:"entity_id"`
	ModelName    string            `json:"model_name"`
	CommentCount int               `json:"comment_count"`
}

func NewCommentsAnalyzedEvent(entityType models.EntityType, entityID, modelName string, commentCount int) CommentsAnalyzedEvent {
	return CommentsAnalyzedEvent{
		BaseEvent:    newBase(CommentsAnalyzed),
		EntityType:   entityType,
		EntityID:     entityID,
		ModelName:    modelName,
		CommentCount: commentCount,
	}
}
