package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/llmjson"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/retry"
)

// OpenAI generates drafts through the OpenAI chat completions API. A custom
// base URL lets it talk to any OpenAI-compatible server as well.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
	retryCfg    retry.Config
}

// NewOpenAI builds an OpenAI backend from configuration. Returns
// ErrMissingAPIKey when no key is configured.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: float64(cfg.Temperature),
		timeout:     config.Duration(cfg.Timeout, 60*time.Second),
		retryCfg:    retry.DefaultConfig(),
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// Generate runs one chat completion round trip and normalizes the reply.
func (o *OpenAI) Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}
	prompt := BuildPrompt(req)

	var text string
	err := retry.Do(ctx, o.retryCfg, nil, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		resp, err := o.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(o.temperature),
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}
		text = resp.Choices[0].Message.Content
		if strings.TrimSpace(text) == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return core.Draft{}, fmt.Errorf("openai: %w", err)
	}

	return llmjson.Normalize(text), nil
}
