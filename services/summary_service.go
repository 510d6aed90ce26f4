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

// DefaultGenerateTimeout bounds one model invocation.
const DefaultGenerateTimeout = 30 * time.Second

// ErrQuotaExhausted is returned when the daily LLM quota is spent.
var ErrQuotaExhausted = errors.New("daily AI quota exhausted")

// SummaryStore is the persistence surface the summary pipeline needs:
// point lookup and upsert by the (entity_type, entity_id) key.
type SummaryStore interface {
	FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AISummary, error)
	UpsertByEntity(ctx context.Context, doc *models.AISummary) (*mongo.UpdateResult, error)
}

// AILogStore records model usage; writes are best-effort.
type AILogStore interface {
	Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error)
}

// SummaryResult is the payload returned to the HTTP layer.
type SummaryResult struct {
	HumanSummary string                `json:"humanSummary"`
	Summary      models.AnalysisResult `json:"summary"`
	FromCache    bool                  `json:"fromCache"`
	Degraded     bool                  `json:"degraded,omitempty"`
}

// SummaryService runs the generate-and-cache pipeline:
// validate -> cache lookup -> miss: prompt -> invoke -> parse -> persist.
// Concurrent misses for the same key are coalesced into one invocation.
type SummaryService struct {
	generator summarizer.TextGenerator
	store     SummaryStore
	logs      AILogStore
	quota     *quota.SummaryQuotaLimiter
	publisher eventbus.Publisher
	timeout   time.Duration

	group singleflight.Group
}

// NewSummaryService wires the pipeline. logs, limiter and publisher may be
// nil; the corresponding side effects are then skipped.
func NewSummaryService(generator summarizer.TextGenerator, store SummaryStore, logs AILogStore, limiter *quota.SummaryQuotaLimiter, publisher eventbus.Publisher, timeout time.Duration) *SummaryService {
	if publisher == nil {
		publisher = eventbus.NoopPublisher{}
	}
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &SummaryService{
		generator: generator,
		store:     store,
		logs:      logs,
		quota:     limiter,
		publisher: publisher,
		timeout:   timeout,
	}
}

// GetOrGenerate returns the cached summary for the request's key, or
// generates, stores and returns a fresh one. ForceRegenerate skips the
// lookup and overwrites the stored record.
func (s *SummaryService) GetOrGenerate(ctx context.Context, req summarizer.SummaryRequest) (*SummaryResult, error) {
	if err := validateSummaryRequest(&req); err != nil {
		return nil, err
	}

	if !req.ForceRegenerate {
		cached, err := s.store.FindByEntity(ctx, req.EntityType, req.EntityID)
		switch {
		case err == nil:
			return &SummaryResult{
				HumanSummary: cached.HumanSummary,
				Summary:      cached.SummaryData,
				FromCache:    true,
			}, nil
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, newError(KindBackend, err)
		}
	}

	// Force never joins an in-flight generation: the caller asked for a
	// fresh result, not whatever is already being computed for this key.
	if req.ForceRegenerate {
		return s.generate(context.WithoutCancel(ctx), req)
	}

	// Coalesce concurrent misses for the same key: one model call, one
	// cache write, shared result. The closure runs detached so a
	// disconnecting leader cannot cancel the waiters' shared generation;
	// the timeout inside generate still bounds it.
	key := string(req.EntityType) + "/" + req.EntityID
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SummaryResult), nil
}

// Lookup returns the stored summary without ever invoking the model.
func (s *SummaryService) Lookup(ctx context.Context, entityType models.EntityType, entityID string) (*models.AISummary, error) {
	stored, err := s.store.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindNotFound, err)
		}
		return nil, newError(KindBackend, err)
	}
	return stored, nil
}

func (s *SummaryService) generate(ctx context.Context, req summarizer.SummaryRequest) (*SummaryResult, error) {
	if s.quota != nil {
		ok, err := s.quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, newError(KindBackend, err)
		}
		if !ok {
			return nil, newError(KindQuota, ErrQuotaExhausted)
		}
	}

	prompt := summarizer.BuildSummaryPrompt(req)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestedAt := time.Now()
	raw, stats, err := s.generator.GenerateText(genCtx, prompt)
	if err != nil {
		s.logCall(req.EntityType, req.EntityID, "summary", prompt, raw, stats, requestedAt, err)
		return nil, newError(KindBackend, err)
	}

	parsed, err := summarizer.ParseSummaryResponse(raw)
	if err != nil {
		s.logCall(req.EntityType, req.EntityID, "summary", prompt, raw, stats, requestedAt, err)
		return nil, newError(KindParse, err)
	}

	doc := &models.AISummary{
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		HumanSummary: parsed.HumanSummary,
		SummaryData:  parsed.Analysis,
		ModelName:    s.generator.ModelName(),
		GeneratedAt:  time.Now(),
	}
	if _, err := s.store.UpsertByEntity(ctx, doc); err != nil {
		return nil, newError(KindBackend, err)
	}

	s.logCall(req.EntityType, req.EntityID, "summary", prompt, raw, stats, requestedAt, nil)
	s.publishSummaryGenerated(ctx, req, parsed.HumanSummary)

	return &SummaryResult{
		HumanSummary: parsed.HumanSummary,
		Summary:      parsed.Analysis,
		FromCache:    false,
		Degraded:     parsed.Degraded,
	}, nil
}

func (s *SummaryService) publishSummaryGenerated(ctx context.Context, req summarizer.SummaryRequest, humanSummary string) {
	evt := events.NewSummaryGeneratedEvent(req.EntityType, req.EntityID, s.generator.ModelName(), req.ForceRegenerate, humanSummary)
	wire, err := eventbus.NewEvent(evt.ID, string(evt.Type), evt)
	if err == nil {
		err = s.publisher.Publish(ctx, eventbus.TopicAIEvents, wire)
	}
	if err != nil {
		logger.Log.Warnf("failed to publish %s for %s/%s: %v", events.SummaryGenerated, req.EntityType, req.EntityID, err)
	}
}

// logCall records one model invocation in ai_logs. Failures are logged and
// swallowed; usage accounting never fails a user request.
func (s *SummaryService) logCall(entityType models.EntityType, entityID, operation, prompt, response string, stats *summarizer.CallStats, requestedAt time.Time, callErr error) {
	if s.logs == nil {
		return
	}

	doc := models.AILog{
		EntityType:     entityType,
		EntityID:       entityID,
		Operation:      operation,
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

	// Detached context: the log write should survive a cancelled request.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.logs.Insert(ctx, doc); err != nil {
		logger.Log.Warnf("failed to insert ai_log for %s/%s: %v", entityType, entityID, err)
	}
}

func validateSummaryRequest(req *summarizer.SummaryRequest) error {
	if req.EntityType == "" {
		return validationErrorf("type is required")
	}
	if req.EntityID == "" {
		return validationErrorf("entityId is required")
	}
	return nil
}
