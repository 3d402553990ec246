// Package images sources article imagery and places it into generated HTML.
package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

// Provider searches for a single representative image URL for a keyword.
// An empty URL with a nil error means no match was found.
type Provider interface {
	Search(ctx context.Context, keyword string) (string, error)
}

// ErrMissingAPIKey indicates the Pexels key is absent from configuration.
var ErrMissingAPIKey = errors.New("pexels API key is not configured")

// Pexels queries the Pexels photo search API.
type Pexels struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewPexels builds a Pexels provider from configuration.
func NewPexels(cfg config.Image) (*Pexels, error) {
	if cfg.PexelsAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Pexels{
		apiKey:     cfg.PexelsAPIKey,
		httpClient: &http.Client{Timeout: config.Duration(cfg.Timeout, 10*time.Second)},
		baseURL:    "https://api.pexels.com",
	}, nil
}

// Search returns the large2x URL of the first landscape photo matching the
// keyword, or "" when nothing matched.
func (p *Pexels) Search(ctx context.Context, keyword string) (string, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("per_page", "15")
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pexels search %q: %w", keyword, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels search %q: status %d", keyword, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("pexels search %q: read body: %w", keyword, err)
	}

	var out struct {
		Photos []struct {
			Src struct {
				Large2x string `json:"large2x"`
				Large   string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("pexels search %q: decode: %w", keyword, err)
	}
	if len(out.Photos) == 0 {
		return "", nil
	}
	if out.Photos[0].Src.Large2x != "" {
		return out.Photos[0].Src.Large2x, nil
	}
	return out.Photos[0].Src.Large, nil
}

// SplitKeywords breaks a comma-separated keyword string into trimmed,
// non-empty search terms.
func SplitKeywords(keywords string) []string {
	parts := strings.Split(keywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SearchFirst tries each keyword in order and returns the first hit.
// Per-keyword failures are logged and skipped; "" means no keyword matched.
func SearchFirst(ctx context.Context, provider Provider, keywords string) string {
	for _, keyword := range SplitKeywords(keywords) {
		imageURL, err := provider.Search(ctx, keyword)
		if err != nil {
			logger.Warn("image search failed", "keyword", keyword, "error", err.Error())
			continue
		}
		if imageURL != "" {
			logger.Info("image found", "keyword", keyword, "url", imageURL)
			return imageURL
		}
	}
	return ""
}
