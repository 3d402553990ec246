package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/llmjson"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/retry"
)

// Kind selects the wire format a self-hosted endpoint speaks. It is fixed
// by configuration rather than probed at request time.
type Kind string

const (
	KindOllama           Kind = "ollama"
	KindOpenAICompatible Kind = "openai_compatible"
	KindCustomHosted     Kind = "custom_hosted"
)

// GPTOSS generates drafts against a self-hosted GPT-OSS model server.
type GPTOSS struct {
	endpoint    string
	apiKey      string
	model       string
	kind        Kind
	temperature float64
	httpClient  *http.Client
	retryCfg    retry.Config
}

// NewGPTOSS builds a self-hosted backend from configuration. The endpoint
// must be set; the API key is only required by servers that enforce one.
func NewGPTOSS(cfg config.GPTOSSConfig) (*GPTOSS, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("gptoss: endpoint is not configured: %w", ErrMissingAPIKey)
	}

	kind := Kind(cfg.Kind)
	switch kind {
	case KindOllama, KindOpenAICompatible, KindCustomHosted:
	default:
		return nil, fmt.Errorf("gptoss: unknown backend kind %q", cfg.Kind)
	}

	return &GPTOSS{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		kind:        kind,
		temperature: float64(cfg.Temperature),
		httpClient:  &http.Client{Timeout: config.Duration(cfg.Timeout, 120*time.Second)},
		retryCfg:    retry.DefaultConfig(),
	}, nil
}

func (s *GPTOSS) Name() string { return "gptoss" }

// Generate runs one generation round trip in the configured wire format and
// normalizes the reply.
func (s *GPTOSS) Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}
	prompt := BuildPrompt(req)

	var text string
	err := retry.Do(ctx, s.retryCfg, nil, func(ctx context.Context) error {
		var (
			raw string
			err error
		)
		switch s.kind {
		case KindOllama:
			raw, err = s.generateOllama(ctx, model, prompt)
		case KindOpenAICompatible:
			raw, err = s.generateChatCompletions(ctx, model, prompt)
		case KindCustomHosted:
			raw, err = s.generateCustomHosted(ctx, model, prompt)
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			return ErrEmptyResponse
		}
		text = raw
		return nil
	})
	if err != nil {
		return core.Draft{}, fmt.Errorf("gptoss: %w", err)
	}

	return llmjson.Normalize(text), nil
}

// generateOllama speaks the Ollama native /api/generate format.
func (s *GPTOSS) generateOllama(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": s.temperature,
			"top_p":       0.9,
		},
	}

	body, err := s.post(ctx, s.endpoint+"/api/generate", payload, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}

// generateChatCompletions speaks the OpenAI-compatible /v1/chat/completions
// format with a bearer token.
func (s *GPTOSS) generateChatCompletions(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": s.temperature,
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	body, err := s.post(ctx, s.endpoint+"/v1/chat/completions", payload, headers)
	if err != nil {
		return "", err
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

// generateCustomHosted speaks the custom /api/v1/generate format with an
// X-API-Key header.
func (s *GPTOSS) generateCustomHosted(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model":       model,
		"prompt":      prompt,
		"temperature": s.temperature,
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers["X-API-Key"] = s.apiKey
	}

	body, err := s.post(ctx, s.endpoint+"/api/v1/generate", payload, headers)
	if err != nil {
		return "", err
	}

	var out struct {
		GeneratedText string `json:"generated_text"`
		Text          string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if out.GeneratedText != "" {
		return out.GeneratedText, nil
	}
	return out.Text, nil
}

// post sends a JSON payload and returns the response body. Authentication
// failures are marked permanent so the retry loop stops early.
func (s *GPTOSS) post(ctx context.Context, url string, payload any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, url, truncateBody(body))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

func truncateBody(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
