// Package publish pushes finished posts to external blog platforms.
package publish

import (
	"context"
	"errors"
	"strings"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

// Receipt is the platform's acknowledgement of a published post.
type Receipt struct {
	Platform string `json:"platform"`
	PostID   string `json:"post_id"`  // platform-assigned identifier
	URL      string `json:"url"`      // public URL when the platform returns one
	Draft    bool   `json:"is_draft"` // true when published as a draft
}

// Publisher pushes one post to a platform.
type Publisher interface {
	// Platform returns the identifier used in config and logs.
	Platform() string

	Publish(ctx context.Context, post core.Post) (Receipt, error)
}

// ErrNotConfigured indicates the platform's credentials or target are
// missing from configuration.
var ErrNotConfigured = errors.New("publish target is not configured")

// contentWithHashtags appends the post's hashtags to the body unless they
// already appear in it.
func contentWithHashtags(post core.Post) string {
	if post.Hashtags == "" || strings.Contains(post.Content, post.Hashtags) {
		return post.Content
	}
	return post.Content + "\n<p>" + post.Hashtags + "</p>"
}
