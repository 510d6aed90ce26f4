package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"

	"legispuls/eventbus"
	"legispuls/events"
	"legispuls/logger"
	"legispuls/models"
	"legispuls/quota"
	"legispuls/repositories"
	"legispuls/summarizer"
)

// CommentAnalysisStore mirrors SummaryStore for the comment-analysis cache.
type CommentAnalysisStore interface {
	FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AICommentAnalysis, error)
	UpsertByEntity(ctx context.Context, doc *models.AICommentAnalysis) (*mongo.UpdateResult, error)
}

// CommentsResult is the payload returned to the HTTP layer.
type CommentsResult struct {
	Analysis  models.CommentsAnalysisResult `json:"analysis"`
	FromCache bool                          `json:"fromCache"`
}

// CommentsService analyzes the citizen comments of one project and caches
// the result per (entity_type, entity_id), with the same force-regenerate
// contract as the summary pipeline. It shares the LLM quota with summaries
// since both spend the same backend budget.
type CommentsService struct {
	generator summarizer.TextGenerator
	store     CommentAnalysisStore
	logs      AILogStore
	quota     *quota.SummaryQuotaLimiter
	publisher eventbus.Publisher
	timeout   time.Duration

	group singleflight.Group
}

func NewCommentsService(generator summarizer.TextGenerator, store CommentAnalysisStore, logs AILogStore, limiter *quota.SummaryQuotaLimiter, publisher eventbus.Publisher, timeout time.Duration) *CommentsService {
	if publisher == nil {
		publisher = eventbus.NoopPublisher{}
	}
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &CommentsService{
		generator: generator,
		store:     store,
		logs:      logs,
		quota:     limiter,
		publisher: publisher,
		timeout:   timeout,
	}
}

// GetOrAnalyze returns the cached analysis or runs a fresh one.
func (s *CommentsService) GetOrAnalyze(ctx context.Context, req summarizer.CommentsRequest) (*CommentsResult, error) {
	if req.EntityType == "" {
		return nil, validationErrorf("type is required")
	}
	if req.EntityID == "" {
		return nil, validationErrorf("entityId is required")
	}
	if len(req.Comments) == 0 {
		return nil, validationErrorf("comments are required")
	}

	if !req.ForceRegenerate {
		cached, err := s.store.FindByEntity(ctx, req.EntityType, req.EntityID)
		switch {
		case err == nil:
			return &CommentsResult{Analysis: cached.AnalysisData, FromCache: true}, nil
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, newError(KindBackend, err)
		}
	}

	// Same concurrency contract as the summary pipeline: force bypasses
	// the group, and the coalesced run is detached from the leader.
	if req.ForceRegenerate {
		return s.analyze(context.WithoutCancel(ctx), req)
	}

	key := string(req.EntityType) + "/" + req.EntityID
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.analyze(context.WithoutCancel(ctx), req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CommentsResult), nil
}

func (s *CommentsService) analyze(ctx context.Context, req summarizer.CommentsRequest) (*CommentsResult, error) {
	if s.quota != nil {
		ok, err := s.quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, newError(KindBackend, err)
		}
		if !ok {
			return nil, newError(KindQuota, ErrQuotaExhausted)
		}
	}

	prompt := summarizer.BuildCommentsPrompt(req)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestedAt := time.Now()
	raw, stats, err := s.generator.GenerateText(genCtx, prompt)
	if err != nil {
		s.logCall(req, prompt, raw, stats, requestedAt, err)
		return nil, newError(KindBackend, err)
	}

	analysis, err := summarizer.ParseCommentsResponse(raw)
	if err != nil {
		s.logCall(req, prompt, raw, stats, requestedAt, err)
		return nil, newError(KindParse, err)
	}

	doc := &models.AICommentAnalysis{
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		AnalysisData: *analysis,
		CommentCount: len(req.Comments),
		ModelName:    s.generator.ModelName(),
	}
	if _, err := s.store.UpsertByEntity(ctx, doc); err != nil {
		return nil, newError(KindBackend, err)
	}

	s.logCall(req, prompt, raw, stats, requestedAt, nil)

	evt := events.NewCommentsAnalyzedEvent(req.EntityType, req.EntityID, s.generator.ModelName(), len(req.Comments))
	wire, werr := eventbus.NewEvent(evt.ID, string(evt.Type), evt)
	if werr == nil {
		werr = s.publisher.Publish(ctx, eventbus.TopicAIEvents, wire)
	}
	if werr != nil {
		logger.Log.Warnf("failed to publish %s for %s/%s: %v", events.CommentsAnalyzed, req.EntityType, req.EntityID, werr)
	}

	return &CommentsResult{Analysis: *analysis, FromCache: false}, nil
}

func (s *CommentsService) logCall(req summarizer.CommentsRequest, prompt, response string, stats *summarizer.CallStats, requestedAt time.Time, callErr error) {
	if s.logs == nil {
		return
	}

	doc := models.AILog{
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Operation:      "comments-analysis",
		ModelName:      s.generator.ModelName(),
		InputPrompt:    prompt,
		OutputResponse: response,
		RequestedAt:    requestedAt,
		CompletedAt:    time.Now(),
	}
	if stats != nil {
		doc.InputTokens = stats.InputTokens
		doc.OutputTokens = stats.OutputTokens
		doc.TotalTokens = stats.TotalTokens
		doc.DurationMs = stats.DurationMs
	}
	if callErr != nil {
		msg := callErr.Error()
		doc.ErrorMessage = &msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.logs.Insert(ctx, doc); err != nil {
		logger.Log.Warnf("failed to insert ai_log for %s/%s: %v", req.EntityType, req.EntityID, err)
	}
}
