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

// Blogger publishes posts to Google Blogger through its v3 REST API with a
// caller-supplied OAuth access token.
type Blogger struct {
	blogID      string
	accessToken string
	asDraft     bool
	httpClient  *http.Client
	baseURL     string
}

// NewBlogger builds a Blogger publisher. The blog ID comes from
// configuration; the OAuth token comes from the caller since it is
// short-lived.
func NewBlogger(cfg config.BloggerConfig, accessToken string, asDraft bool) (*Blogger, error) {
	if cfg.BlogID == "" {
		return nil, fmt.Errorf("blogger: blog_id: %w", ErrNotConfigured)
	}
	if accessToken == "" {
		return nil, fmt.Errorf("blogger: access token: %w", ErrNotConfigured)
	}
	return &Blogger{
		blogID:      cfg.BlogID,
		accessToken: accessToken,
		asDraft:     asDraft,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     "https://www.googleapis.com",
	}, nil
}

func (b *Blogger) Platform() string { return "blogger" }

// Publish creates the post on the configured blog.
func (b *Blogger) Publish(ctx context.Context, post core.Post) (Receipt, error) {
	payload := map[string]any{
		"kind":    "blogger#post",
		"title":   post.Title,
		"content": contentWithHashtags(post),
	}
	if labels := hashtagLabels(post.Hashtags); len(labels) > 0 {
		payload["labels"] = labels
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("blogger: encode post: %w", err)
	}

	url := fmt.Sprintf("%s/blogger/v3/blogs/%s/posts?isDraft=%t", b.baseURL, b.blogID, b.asDraft)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Receipt{}, fmt.Errorf("blogger: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("blogger: publish: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, fmt.Errorf("blogger: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Receipt{}, fmt.Errorf("blogger: publish status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Receipt{}, fmt.Errorf("blogger: decode response: %w", err)
	}

	logger.Info("post published", "platform", "blogger", "post_id", out.ID, "url", out.URL, "draft", b.asDraft)
	return Receipt{Platform: "blogger", PostID: out.ID, URL: out.URL, Draft: b.asDraft}, nil
}

// hashtagLabels turns "#태그1 #태그2" style hashtag strings into Blogger
// labels.
func hashtagLabels(hashtags string) []string {
	fields := strings.FieldsFunc(hashtags, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n'
	})
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		if l := strings.TrimPrefix(strings.TrimSpace(f), "#"); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
