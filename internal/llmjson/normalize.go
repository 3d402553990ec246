// Package llmjson recovers a usable article draft from raw language-model
// output. Models wrap JSON in code fences, prepend prose, truncate mid-object
// and occasionally return no JSON at all; Normalize absorbs all of it and
// always returns a complete draft.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

const (
	defaultTitle    = "AI 생성 블로그 포스트"
	defaultKeywords = "blog, content, article"

	// maxFallbackBody bounds how much raw text is carried into a
	// synthesized body when no JSON could be recovered.
	maxFallbackBody = 2000
)

var (
	codeFenceRe   = regexp.MustCompile("```[a-zA-Z]*[ \t]*\n?")
	looseObjectRe = regexp.MustCompile(`(?s)\{[^{}]*\}`)
)

// Normalize extracts, repairs and validates a Draft from raw model output.
// It never fails: when no JSON object can be recovered the Draft is
// synthesized from the raw text, and missing required fields are defaulted.
func Normalize(raw string) core.Draft {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))

	jsonStr, ok := ExtractObject(cleaned)
	if !ok {
		jsonStr, ok = repairTruncated(cleaned)
	}
	if !ok {
		if m := looseObjectRe.FindString(cleaned); m != "" {
			jsonStr, ok = m, true
		}
	}

	if ok {
		if draft, err := decodeDraft(jsonStr, raw); err == nil {
			return finalize(draft)
		} else {
			logger.Warn("draft JSON unparseable after repair, synthesizing", "detail", err.Error())
		}
	}

	return finalize(synthesize(raw))
}

// ExtractObject scans cleaned text for the first complete top-level JSON
// object using depth counting. Braces inside string literals are ignored,
// which naive first-{/last-} slicing gets wrong.
func ExtractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairTruncated assumes the model ran out of tokens mid-object: it counts
// the unmatched open braces after the first '{' (string-aware) and appends
// that many closers. Truncation inside a string literal is not repairable
// and reports false.
func repairTruncated(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	fragment := s[start:]

	open := 0
	inString := false
	escaped := false
	for i := 0; i < len(fragment); i++ {
		c := fragment[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			open++
		case '}':
			open--
		}
	}
	if inString || open <= 0 {
		return "", false
	}

	return strings.TrimRight(fragment, ", \t\n\r") + strings.Repeat("}", open), true
}

// rawDraft accepts both key spellings seen in the wild for the body field.
type rawDraft struct {
	Title                  string `json:"title"`
	ContentWithPlaceholder string `json:"content_with_placeholder"`
	BodyWithPlaceholder    string `json:"body_with_placeholder"`
	Summary                string `json:"summary"`
	ImageSearchKeywords    string `json:"image_search_keywords"`
	ImageQueryKeywords     string `json:"image_query_keywords"`
	Hashtags               string `json:"hashtags"`
}

func decodeDraft(jsonStr, raw string) (core.Draft, error) {
	var rd rawDraft
	if err := json.Unmarshal([]byte(jsonStr), &rd); err != nil {
		return core.Draft{}, err
	}

	body := rd.ContentWithPlaceholder
	if body == "" {
		body = rd.BodyWithPlaceholder
	}
	if strings.TrimSpace(body) == "" {
		// Keep whatever surrounded the JSON object; it is usually the
		// article the model wrote outside the envelope.
		leftover := strings.TrimSpace(strings.Replace(raw, jsonStr, "", 1))
		if leftover == "" {
			leftover = "AI가 생성한 콘텐츠입니다."
		}
		body = "<p>" + leftover + "</p>"
	}

	keywords := rd.ImageSearchKeywords
	if keywords == "" {
		keywords = rd.ImageQueryKeywords
	}

	return core.Draft{
		Title:               strings.TrimSpace(rd.Title),
		BodyWithPlaceholder: body,
		Summary:             strings.TrimSpace(rd.Summary),
		ImageKeywords:       strings.TrimSpace(keywords),
		Hashtags:            strings.TrimSpace(rd.Hashtags),
	}, nil
}

// synthesize builds a Draft directly from raw text when no JSON survived.
// The first sufficiently long line becomes the title and a bounded prefix
// becomes the body.
func synthesize(raw string) core.Draft {
	title := ""
	var contentLines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if title == "" && utf8.RuneCountInString(trimmed) > 10 {
			title = truncateRunes(trimmed, 100)
		}
		contentLines = append(contentLines, trimmed)
		if len(contentLines) >= 20 {
			break
		}
	}
	if title == "" {
		title = defaultTitle
	}

	content := truncateRunes(strings.Join(contentLines, "\n"), maxFallbackBody)

	return core.Draft{
		Title:               title,
		BodyWithPlaceholder: "<h2>" + title + "</h2>\n<p>" + content + "</p>\n" + core.PlaceholderToken,
		Summary:             title,
		ImageKeywords:       defaultKeywords,
	}
}

// finalize applies required-field defaults and the placeholder cardinality
// invariant: at most one occurrence of the token survives.
func finalize(d core.Draft) core.Draft {
	if d.Title == "" {
		d.Title = defaultTitle
	}
	if d.Summary == "" {
		d.Summary = d.Title
	}
	if d.ImageKeywords == "" {
		d.ImageKeywords = defaultKeywords
	}
	if strings.TrimSpace(d.BodyWithPlaceholder) == "" {
		d.BodyWithPlaceholder = "<h2>" + d.Title + "</h2>\n" + core.PlaceholderToken
	}
	d.BodyWithPlaceholder = collapsePlaceholders(d.BodyWithPlaceholder)
	return d
}

// collapsePlaceholders keeps the first placeholder token and drops the rest.
func collapsePlaceholders(body string) string {
	first := strings.Index(body, core.PlaceholderToken)
	if first < 0 {
		return body
	}
	head := body[:first+len(core.PlaceholderToken)]
	tail := strings.ReplaceAll(body[first+len(core.PlaceholderToken):], core.PlaceholderToken, "")
	return head + tail
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
