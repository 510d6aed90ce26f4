package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"legispuls/api/handlers"
	"legispuls/config"
	"legispuls/models"
	"legispuls/quota"
	"legispuls/repositories"
	"legispuls/services"
	"legispuls/summarizer"
)

const validModelResponse = `### Streszczenie dla człowieka
To jest test.
### Szczegółowa analiza (JSON)
{"mainPoints":["a"],"impact":"x","complexity":"low","stakeholders":[],"timeline":"t","risks":[],"opportunities":[],"recommendation":"r","confidence":80}`

type stubGenerator struct {
	response string
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, *summarizer.CallStats, error) {
	return g.response, nil, nil
}

func (g *stubGenerator) ModelName() string { return "stub-model" }

type stubSummaryStore struct {
	mu   sync.Mutex
	docs map[string]*models.AISummary
}

func (s *stubSummaryStore) FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AISummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(entityType)+"/"+entityID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *stubSummaryStore) UpsertByEntity(ctx context.Context, doc *models.AISummary) (*mongo.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = map[string]*models.AISummary{}
	}
	stored := *doc
	s.docs[string(doc.EntityType)+"/"+doc.EntityID] = &stored
	return &mongo.UpdateResult{}, nil
}

type stubAnalysisStore struct {
	mu   sync.Mutex
	docs map[string]*models.AICommentAnalysis
}

func (s *stubAnalysisStore) FindByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.AICommentAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(entityType)+"/"+entityID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *stubAnalysisStore) UpsertByEntity(ctx context.Context, doc *models.AICommentAnalysis) (*mongo.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = map[string]*models.AICommentAnalysis{}
	}
	stored := *doc
	s.docs[string(doc.EntityType)+"/"+doc.EntityID] = &stored
	return &mongo.UpdateResult{}, nil
}

func newSummaryRouter(svc *services.SummaryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/ai/summary", handlers.GenerateSummaryHandler(svc))
	r.GET("/api/v1/ai/summary/:type/:id", handlers.GetSummaryHandler(svc))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func TestGenerateSummaryHandler(t *testing.T) {
	svc := services.NewSummaryService(&stubGenerator{response: validModelResponse}, &stubSummaryStore{}, nil, nil, nil, 0)
	r := newSummaryRouter(svc)

	recorder := postJSON(r, "/api/v1/ai/summary", `{"type":"ustawa","entityId":"DU/2025/100","title":"Ustawa testowa"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var result services.SummaryResult
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "To jest test.", result.HumanSummary)
	assert.Equal(t, "low", result.Summary.Complexity)
	assert.False(t, result.FromCache)

	// same key again: served from cache
	recorder = postJSON(r, "/api/v1/ai/summary", `{"type":"ustawa","entityId":"DU/2025/100","title":"Ustawa testowa"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.True(t, result.FromCache)
}

func TestGenerateSummaryHandlerValidation(t *testing.T) {
	svc := services.NewSummaryService(&stubGenerator{response: validModelResponse}, &stubSummaryStore{}, nil, nil, nil, 0)
	r := newSummaryRouter(svc)

	testCases := []struct {
		name      string
		body      string
		wantError string
	}{
		{name: "malformed json", body: `{`, wantError: "invalid request body"},
		{name: "missing type", body: `{"entityId":"a1"}`, wantError: "type is required"},
		{name: "unknown type", body: `{"type":"rozporządzenie","entityId":"a1"}`, wantError: "unknown entity type"},
		{name: "missing entityId", body: `{"type":"legislative-act"}`, wantError: "entityId is required"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := postJSON(r, "/api/v1/ai/summary", testCase.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var body map[string]string
			assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Contains(t, body["error"], testCase.wantError)
			assert.Equal(t, string(services.KindValidation), body["kind"])
		})
	}
}

func TestGenerateSummaryHandlerQuotaExhausted(t *testing.T) {
	limiter := quota.NewSummaryQuotaLimiterFromConfig(config.AppConfig{
		SummaryQuota: config.SummaryQuotaConfig{RequestsPerDay: 1},
	})
	svc := services.NewSummaryService(&stubGenerator{response: validModelResponse}, &stubSummaryStore{}, nil, limiter, nil, 0)
	r := newSummaryRouter(svc)

	recorder := postJSON(r, "/api/v1/ai/summary", `{"type":"ustawa","entityId":"a1","title":"T"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = postJSON(r, "/api/v1/ai/summary", `{"type":"ustawa","entityId":"a2","title":"T"}`)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, string(services.KindQuota), body["kind"])
}

func TestGenerateSummaryHandlerParseFailure(t *testing.T) {
	svc := services.NewSummaryService(&stubGenerator{response: "nie mogę"}, &stubSummaryStore{}, nil, nil, nil, 0)
	r := newSummaryRouter(svc)

	recorder := postJSON(r, "/api/v1/ai/summary", `{"type":"ustawa","entityId":"a1","title":"T"}`)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, string(services.KindParse), body["kind"])
	assert.Contains(t, body["error"], "brak JSON")
}

func TestGetSummaryHandler(t *testing.T) {
	svc := services.NewSummaryService(&stubGenerator{response: validModelResponse}, &stubSummaryStore{}, nil, nil, nil, 0)
	r := newSummaryRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/summary/legislative-act/missing", nil)
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	postJSON(r, "/api/v1/ai/summary", `{"type":"legislative-act","entityId":"act-7","title":"T"}`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ai/summary/legislative-act/act-7", nil)
	recorder = httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var stored models.AISummary
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stored))
	assert.Equal(t, "To jest test.", stored.HumanSummary)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ai/summary/nonsense/x", nil)
	recorder = httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAnalyzeCommentsHandler(t *testing.T) {
	response := `{"sentiment":{"positive":1,"negative":0,"neutral":0,"overall":"positive"},"keyThemes":[],"insights":[],"summary":"Pozytywnie."}`
	svc := services.NewCommentsService(&stubGenerator{response: response}, &stubAnalysisStore{}, nil, nil, nil, 0)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/ai/comments-analysis", handlers.AnalyzeCommentsHandler(svc))

	recorder := postJSON(r, "/api/v1/ai/comments-analysis", `{"type":"konsultacja","entityId":"c1","title":"P","comments":["Popieram"]}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var result services.CommentsResult
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "positive", result.Analysis.Sentiment.Overall)
	assert.Equal(t, "Pozytywnie.", result.Analysis.Summary)

	// comments are mandatory for this pipeline
	recorder = postJSON(r, "/api/v1/ai/comments-analysis", `{"type":"konsultacja","entityId":"c1","title":"P"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
