package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/llmjson"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/retry"
)

// Gemini generates drafts with the Google Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	retryCfg    retry.Config
}

// NewGemini builds a Gemini backend from configuration. Returns
// ErrMissingAPIKey when no key is configured.
func NewGemini(cfg config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     config.Duration(cfg.Timeout, 60*time.Second),
		retryCfg:    retry.DefaultConfig(),
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Generate runs one generation round trip and normalizes the reply.
func (g *Gemini) Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	prompt := BuildPrompt(req)

	var text string
	err := retry.Do(ctx, g.retryCfg, nil, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		contents := []*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		}}
		resp, err := g.client.Models.GenerateContent(callCtx, model, contents, &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.temperature),
			MaxOutputTokens: 8192,
		})
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		text = resp.Text()
		if strings.TrimSpace(text) == "" {
			// Empty replies are flaky-backend behavior, worth retrying.
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return core.Draft{}, fmt.Errorf("gemini: %w", err)
	}

	return llmjson.Normalize(text), nil
}
