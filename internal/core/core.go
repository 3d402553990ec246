package core

import "time"

// PlaceholderToken is the reserved literal the generation prompt asks the
// model to emit exactly once, marking where sourced imagery is inserted.
const PlaceholderToken = "[IMAGE_HERE]"

// SourceType identifies where a content seed came from.
type SourceType string

const (
	SourceTopic   SourceType = "topic"
	SourceYouTube SourceType = "youtube"
)

// ImageSource identifies how the accompanying image is obtained.
type ImageSource string

const (
	ImageSourceNone   ImageSource = "none"
	ImageSourcePexels ImageSource = "pexels"
	ImageSourceUpload ImageSource = "upload"
)

// Draft is the canonical article contract produced by every generation
// backend after normalization. All four required fields (Title,
// BodyWithPlaceholder, Summary, ImageKeywords) are non-empty once a Draft
// leaves the normalizer, and BodyWithPlaceholder contains PlaceholderToken
// at most once. A Draft is never mutated after normalization; image
// placement derives a new body string from it.
type Draft struct {
	Title               string `json:"title"`                    // Article headline
	BodyWithPlaceholder string `json:"content_with_placeholder"` // HTML body, placeholder included 0 or 1 times
	Summary             string `json:"summary"`                  // 1-2 sentence summary
	ImageKeywords       string `json:"image_search_keywords"`    // Comma-separated English search terms
	Hashtags            string `json:"hashtags"`                 // Optional tag list (space/comma separated)
}

// GenerationRequest is the input contract shared by all generation backends.
// It is constructed once per user-initiated generation and passed unchanged
// to each backend the fallback orchestrator tries.
type GenerationRequest struct {
	Seed      string // Topic text or extracted transcript
	ImageHint string // Optional image URL shown to multimodal backends
	Model     string // Backend-specific model identifier ("" = backend default)
	Tone      string // Writing tone, e.g. "친근한"
	Audience  string // Target audience, e.g. "일반 대중"
	MinChars  int    // Prompt-level body length guidance (not enforced)
}

// AttemptOutcome classifies a single backend attempt.
type AttemptOutcome string

const (
	OutcomeSuccess       AttemptOutcome = "success"
	OutcomeParseFailure  AttemptOutcome = "parse_failure"
	OutcomeNetFailure    AttemptOutcome = "network_failure"
	OutcomeTimeout       AttemptOutcome = "timeout"
	OutcomeMissingConfig AttemptOutcome = "missing_config"
)

// Attempt records one backend try within an orchestration run. Attempts are
// in-memory diagnostics only and are never persisted.
type Attempt struct {
	Backend string         `json:"backend"`
	Number  int            `json:"number"`
	Outcome AttemptOutcome `json:"outcome"`
	Detail  string         `json:"detail,omitempty"`
}

// Post is the finished article plus generation metadata, as handed to the
// publish adapters and the route/persistence collaborators.
type Post struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"` // Final HTML body, image already placed
	Summary     string      `json:"summary"`
	Hashtags    string      `json:"hashtags"`
	SourceType  SourceType  `json:"source_type"`
	SourceRef   string      `json:"source_ref,omitempty"` // Original URL for video seeds
	ModelUsed   string      `json:"model_used"`
	Backend     string      `json:"backend"`
	Tone        string      `json:"tone"`
	Audience    string      `json:"audience"`
	ImageSource ImageSource `json:"image_source"`
	ImageURL    string      `json:"image_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
