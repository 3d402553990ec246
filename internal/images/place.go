package images

import (
	"fmt"
	"html"
	"strings"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

// imageTag is the HTML fragment inserted for a sourced image.
const imageTag = `<img src="%s" alt="%s" style="width:100%%; height:auto; border-radius:8px; margin: 1em 0;">`

// Place inserts the image into the body. With an empty imageURL the body is
// returned unchanged, placeholder included. Otherwise the first placeholder
// occurrence is replaced; without a placeholder the tag goes after the first
// closing paragraph, then after the first closing h1, then at the very top.
func Place(body, imageURL, alt string) string {
	if imageURL == "" {
		return body
	}

	tag := fmt.Sprintf(imageTag, html.EscapeString(imageURL), html.EscapeString(alt))

	if strings.Contains(body, core.PlaceholderToken) {
		return strings.Replace(body, core.PlaceholderToken, tag, 1)
	}
	if idx := strings.Index(body, "</p>"); idx >= 0 {
		insert := idx + len("</p>")
		return body[:insert] + tag + body[insert:]
	}
	if idx := strings.Index(body, "</h1>"); idx >= 0 {
		insert := idx + len("</h1>")
		return body[:insert] + tag + body[insert:]
	}
	return tag + body
}
