package publish

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
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

// WordPress publishes posts through the WordPress REST API using an
// application password.
type WordPress struct {
	baseURL     string
	username    string
	appPassword string
	asDraft     bool
	httpClient  *http.Client
}

// NewWordPress builds a WordPress publisher from configuration.
func NewWordPress(cfg config.WordPressConfig, asDraft bool) (*WordPress, error) {
	if cfg.BaseURL == "" || cfg.Username == "" || cfg.AppPassword == "" {
		return nil, fmt.Errorf("wordpress: %w", ErrNotConfigured)
	}
	return &WordPress{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		username:    cfg.Username,
		appPassword: cfg.AppPassword,
		asDraft:     asDraft,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *WordPress) Platform() string { return "wordpress" }

// Publish creates the post on the configured site.
func (w *WordPress) Publish(ctx context.Context, post core.Post) (Receipt, error) {
	status := "publish"
	if w.asDraft {
		status = "draft"
	}
	payload := map[string]any{
		"title":   post.Title,
		"content": contentWithHashtags(post),
		"excerpt": post.Summary,
		"status":  status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("wordpress: encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(data))
	if err != nil {
		return Receipt{}, fmt.Errorf("wordpress: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.username, w.appPassword)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("wordpress: publish: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, fmt.Errorf("wordpress: read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Receipt{}, fmt.Errorf("wordpress: publish status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID   json.Number `json:"id"`
		Link string      `json:"link"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Receipt{}, fmt.Errorf("wordpress: decode response: %w", err)
	}

	logger.Info("post published", "platform", "wordpress", "post_id", out.ID.String(), "url", out.Link, "draft", w.asDraft)
	return Receipt{Platform: "wordpress", PostID: out.ID.String(), URL: out.Link, Draft: w.asDraft}, nil
}
