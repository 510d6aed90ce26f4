package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"legispuls/config"
)

// CallStats carries usage metrics of one generation call, persisted in
// ai_logs.
type CallStats struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	DurationMs   int64
}

// TextGenerator is the text-generation backend. It is constructor-injected
// into the services so tests can substitute a fake returning canned text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, *CallStats, error)
	ModelName() string
}

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// NewGeneratorFromConfig builds the configured backend. API keys come from
// the environment (GROQ_API_KEY / GEMINI_API_KEY), never from yaml.
func NewGeneratorFromConfig(ctx context.Context, cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "groq", "":
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, errors.New("GROQ_API_KEY environment variable is not set")
		}
		return NewGroqGenerator(apiKey, cfg), nil
	case "google":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is not set")
		}
		return NewGoogleGenerator(ctx, apiKey, cfg)
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
}

// GroqGenerator talks to Groq through its OpenAI-compatible chat
// completions API.
type GroqGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewGroqGenerator(apiKey string, cfg config.LLMConfig) *GroqGenerator {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = defaultGroqBaseURL
	}

	model := cfg.ModelName
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	return &GroqGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}
}

func (g *GroqGenerator) ModelName() string { return g.model }

func (g *GroqGenerator) GenerateText(ctx context.Context, prompt string) (string, *CallStats, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, errors.New("empty response from AI")
	}

	stats := &CallStats{
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		TotalTokens:  int64(resp.Usage.TotalTokens),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	return resp.Choices[0].Message.Content, stats, nil
}

// GoogleGenerator talks to the Gemini API.
type GoogleGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGoogleGenerator(ctx context.Context, apiKey string, cfg config.LLMConfig) (*GoogleGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}

	model := cfg.ModelName
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GoogleGenerator{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

func (g *GoogleGenerator) ModelName() string { return g.model }

func (g *GoogleGenerator) GenerateText(ctx context.Context, prompt string) (string, *CallStats, error) {
	start := time.Now()

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(g.temperature),
		},
	)
	if err != nil {
		return "", nil, err
	}

	stats := &CallStats{DurationMs: time.Since(start).Milliseconds()}
	if result.UsageMetadata != nil {
		stats.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		stats.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		stats.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
	}
	return result.Text(), stats, nil
}
