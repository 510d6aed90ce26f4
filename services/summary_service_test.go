package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"legispuls/config"
	"legispuls/models"
	"legispuls/quota"
	"legispuls/repositories"
	"legispuls/services"
	"legispuls/summarizer"
)

const validResponse = `### Streszczenie dla człowieka
To jest test.
### Szczegółowa analiza (JSON)
{"mainPoints":["a"],"impact":"x","complexity":"low","stakeholders":[],"timeline":"t","risks":[],"opportunities":[],"recommendation":"r","confidence":80}`

// fakeGenerator returns a canned response and counts invocations.
type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
	delay    time.Duration
}

func (g *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, *summarizer.CallStats, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	if g.err != nil {
		return "", nil, g.err
	}
	return g.response, &summarizer.CallStats{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func (g *fakeGenerator) ModelName() string { return "fake-model" }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memorySummaryStore keeps summaries in a map keyed like the Mongo unique
// index, stamping timestamps the way the repository upsert does.
type memorySummaryStore struct {
	mu   sync.Mutex
	docs map[string]*models.AISummary
}

func newMemorySummaryStore() *memorySummaryStore {
	return &memorySummaryStore{docs: map[string]*models.AISummary{}}
}

func (s *memorySummaryStore) key(entityType models.EntityType, entityID string) string {
	return string(entityType) + "/" + entityID
}

func (s *memorySummaryStore) FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AISummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[s.key(entityType, entityID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *memorySummaryStore) UpsertByEntity(ctx context.Context, doc *models.AISummary) (*mongo.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	key := s.key(doc.EntityType, doc.EntityID)
	stored := *doc
	if existing, ok := s.docs[key]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.docs[key] = &stored
	return &mongo.UpdateResult{}, nil
}

type memoryAILogStore struct {
	mu   sync.Mutex
	logs []models.AILog
}

func (s *memoryAILogStore) Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return &mongo.InsertOneResult{}, nil
}

func (s *memoryAILogStore) entries() []models.AILog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AILog(nil), s.logs...)
}

func requestKind(t *testing.T, err error) services.ErrorKind {
	t.Helper()
	var reqErr *services.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	return reqErr.Kind
}

func newSummaryRequest() summarizer.SummaryRequest {
	return summarizer.SummaryRequest{
		EntityType: models.EntityLegislativeAct,
		EntityID:   "DU/2025/100",
		Title:      "Ustawa testowa",
	}
}

func TestGetOrGenerateCachesResult(t *testing.T) {
	generator := &fakeGenerator{response: validResponse}
	store := newMemorySummaryStore()
	logs := &memoryAILogStore{}
	svc := services.NewSummaryService(generator, store, logs, nil, nil, 0)

	first, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "To jest test.", first.HumanSummary)
	assert.Equal(t, "low", first.Summary.Complexity)

	second, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.HumanSummary, second.HumanSummary)
	assert.Equal(t, first.Summary, second.Summary)

	assert.Equal(t, 1, generator.callCount())
	assert.Len(t, logs.entries(), 1)
}

func TestGetOrGenerateForceRegenerate(t *testing.T) {
	generator := &fakeGenerator{response: validResponse}
	store := newMemorySummaryStore()
	svc := services.NewSummaryService(generator, store, nil, nil, nil, 0)

	req := newSummaryRequest()
	_, err := svc.GetOrGenerate(context.Background(), req)
	assert.NoError(t, err)

	before, err := store.FindByEntity(context.Background(), req.EntityType, req.EntityID)
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	req.ForceRegenerate = true
	result, err := svc.GetOrGenerate(context.Background(), req)
	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, generator.callCount())

	// the record is overwritten in place: same creation time, newer update
	after, err := store.FindByEntity(context.Background(), req.EntityType, req.EntityID)
	assert.NoError(t, err)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestGetOrGenerateSurvivesCallerDisconnect(t *testing.T) {
	generator := &fakeGenerator{response: validResponse, delay: 80 * time.Millisecond}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, nil, nil, 0)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.GetOrGenerate(leaderCtx, newSummaryRequest())
		leaderErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	followerErr := make(chan error, 1)
	go func() {
		_, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
		followerErr <- err
	}()

	// the first caller disconnects mid-generation
	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.NoError(t, <-leaderErr)
	assert.NoError(t, <-followerErr)
	assert.Equal(t, 1, generator.callCount())
}

func TestGetOrGenerateForceBypassesInFlight(t *testing.T) {
	generator := &fakeGenerator{response: validResponse, delay: 80 * time.Millisecond}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, nil, nil, 0)

	inFlight := make(chan error, 1)
	go func() {
		_, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
		inFlight <- err
	}()

	time.Sleep(20 * time.Millisecond)

	req := newSummaryRequest()
	req.ForceRegenerate = true
	result, err := svc.GetOrGenerate(context.Background(), req)
	assert.NoError(t, err)
	assert.False(t, result.FromCache)

	assert.NoError(t, <-inFlight)
	// force must run its own generation, not piggyback on the miss in flight
	assert.Equal(t, 2, generator.callCount())
}

func TestGetOrGenerateValidation(t *testing.T) {
	generator := &fakeGenerator{response: validResponse}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, nil, nil, 0)

	testCases := []struct {
		name string
		req  summarizer.SummaryRequest
	}{
		{name: "missing type", req: summarizer.SummaryRequest{EntityID: "a1"}},
		{name: "missing entityId", req: summarizer.SummaryRequest{EntityType: models.EntityConsultation}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := svc.GetOrGenerate(context.Background(), testCase.req)
			assert.Equal(t, services.KindValidation, requestKind(t, err))
		})
	}
	assert.Equal(t, 0, generator.callCount())
}

func TestGetOrGenerateQuotaExhausted(t *testing.T) {
	limiter := quota.NewSummaryQuotaLimiterFromConfig(config.AppConfig{
		SummaryQuota: config.SummaryQuotaConfig{RequestsPerDay: 1},
	})
	generator := &fakeGenerator{response: validResponse}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, limiter, nil, 0)

	_, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.NoError(t, err)

	req := newSummaryRequest()
	req.EntityID = "DU/2025/200"
	_, err = svc.GetOrGenerate(context.Background(), req)
	assert.Equal(t, services.KindQuota, requestKind(t, err))
	assert.ErrorIs(t, err, services.ErrQuotaExhausted)
}

func TestGetOrGenerateParseFailure(t *testing.T) {
	generator := &fakeGenerator{response: "przepraszam, nie mogę"}
	store := newMemorySummaryStore()
	logs := &memoryAILogStore{}
	svc := services.NewSummaryService(generator, store, logs, nil, nil, 0)

	_, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.Equal(t, services.KindParse, requestKind(t, err))
	assert.ErrorIs(t, err, summarizer.ErrMissingStructuredData)

	// nothing persisted, but the failed call is accounted for
	_, err = store.FindByEntity(context.Background(), models.EntityLegislativeAct, "DU/2025/100")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	entries := logs.entries()
	assert.Len(t, entries, 1)
	assert.NotNil(t, entries[0].ErrorMessage)
}

func TestGetOrGenerateBackendFailure(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("upstream 503")}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, nil, nil, 0)

	_, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.Equal(t, services.KindBackend, requestKind(t, err))
}

func TestGetOrGenerateCoalescesConcurrentMisses(t *testing.T) {
	generator := &fakeGenerator{response: validResponse, delay: 50 * time.Millisecond}
	svc := services.NewSummaryService(generator, newMemorySummaryStore(), nil, nil, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.GetOrGenerate(context.Background(), newSummaryRequest())
			assert.NoError(t, err)
			assert.Equal(t, "To jest test.", result.HumanSummary)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, generator.callCount())
}

func TestLookup(t *testing.T) {
	generator := &fakeGenerator{response: validResponse}
	store := newMemorySummaryStore()
	svc := services.NewSummaryService(generator, store, nil, nil, nil, 0)

	_, err := svc.Lookup(context.Background(), models.EntityLegislativeAct, "DU/2025/100")
	assert.Equal(t, services.KindNotFound, requestKind(t, err))

	_, err = svc.GetOrGenerate(context.Background(), newSummaryRequest())
	assert.NoError(t, err)

	stored, err := svc.Lookup(context.Background(), models.EntityLegislativeAct, "DU/2025/100")
	assert.NoError(t, err)
	assert.Equal(t, "To jest test.", stored.HumanSummary)
	assert.Equal(t, "fake-model", stored.ModelName)
	// the lookup path must never trigger generation
	assert.Equal(t, 1, generator.callCount())
}
