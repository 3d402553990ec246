// Package pipeline wires seed resolution, generation, image sourcing and
// placement into a single run that produces a publishable Post.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/backend"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/images"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/transcript"
)

const (
	minCharsTopic = 2500
	minCharsVideo = 3500
)

// Request describes one article to produce. Zero-value fields fall back to
// the configured defaults.
type Request struct {
	Seed        string           `json:"seed"`
	Tone        string           `json:"tone,omitempty"`
	Audience    string           `json:"audience,omitempty"`
	Model       string           `json:"model,omitempty"`
	ImageSource core.ImageSource `json:"image_source,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"` // used when ImageSource is upload
}

// Result is a finished pipeline run: the post plus the backend attempt
// trail, which is kept even on failure for diagnostics.
type Result struct {
	Post     core.Post      `json:"post"`
	Attempts []core.Attempt `json:"attempts"`
}

// generator matches backend.Fallback.
type generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, []core.Attempt, error)
}

// seedExtractor matches transcript.Extractor.
type seedExtractor interface {
	Extract(ctx context.Context, url string) (transcript.Result, error)
}

// Pipeline runs the full seed-to-post flow.
type Pipeline struct {
	cfg       *config.Config
	generator generator
	extractor seedExtractor
	provider  images.Provider // nil when no image provider is configured
}

// New assembles a Pipeline from configuration. A missing Pexels key only
// disables image sourcing; generation still runs.
func New(cfg *config.Config) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		generator: backend.FromConfig(cfg),
		extractor: transcript.New(cfg.YouTube),
	}
	if provider, err := images.NewPexels(cfg.Image); err == nil {
		p.provider = provider
	} else if cfg.Image.Source == string(core.ImageSourcePexels) {
		logger.Warn("pexels image source configured without API key, images disabled", "error", err.Error())
	}
	return p
}

// Run produces one post from the request seed. The attempt trail in the
// result is populated even when generation fails outright.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	seed := req.Seed
	sourceType := core.SourceTopic
	sourceRef := ""
	minChars := minCharsTopic

	if transcript.IsYouTubeURL(req.Seed) {
		sourceType = core.SourceYouTube
		sourceRef = req.Seed
		minChars = minCharsVideo

		res, err := p.extractor.Extract(ctx, req.Seed)
		if err != nil {
			// Generation still runs with the URL itself as context.
			logger.Warn("seed extraction failed, continuing with degraded seed", "url", req.Seed, "error", err.Error())
			seed = fmt.Sprintf("generate content about this video: %s", req.Seed)
		} else {
			seed = res.Seed
		}
	}

	tone := req.Tone
	if tone == "" {
		tone = p.cfg.Content.Tone
	}
	audience := req.Audience
	if audience == "" {
		audience = p.cfg.Content.Audience
	}

	// An uploaded image is known before generation, so multimodal backends
	// get to see it while writing.
	imageHint := ""
	if p.effectiveImageSource(req) == core.ImageSourceUpload {
		imageHint = req.ImageURL
	}

	draft, attempts, err := p.generator.Generate(ctx, core.GenerationRequest{
		Seed:      seed,
		ImageHint: imageHint,
		Model:     req.Model,
		Tone:      tone,
		Audience:  audience,
		MinChars:  minChars,
	})
	if err != nil {
		return Result{Attempts: attempts}, err
	}

	imageSource, imageURL := p.resolveImage(ctx, req, draft)
	content := images.Place(draft.BodyWithPlaceholder, imageURL, draft.Title)

	usedBackend := successBackend(attempts)
	post := core.Post{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Content:     content,
		Summary:     draft.Summary,
		Hashtags:    draft.Hashtags,
		SourceType:  sourceType,
		SourceRef:   sourceRef,
		ModelUsed:   p.modelFor(usedBackend, req.Model),
		Backend:     usedBackend,
		Tone:        tone,
		Audience:    audience,
		ImageSource: imageSource,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}

	logger.Info("post assembled",
		"id", post.ID,
		"source_type", string(post.SourceType),
		"backend", post.Backend,
		"image_source", string(post.ImageSource),
	)
	return Result{Post: post, Attempts: attempts}, nil
}

// effectiveImageSource applies the configured default when the request
// leaves the source unset.
func (p *Pipeline) effectiveImageSource(req Request) core.ImageSource {
	if req.ImageSource != "" {
		return req.ImageSource
	}
	return core.ImageSource(p.cfg.Image.Source)
}

// resolveImage decides where the article image comes from. Image failures
// never fail the run; the post simply ships without one.
func (p *Pipeline) resolveImage(ctx context.Context, req Request, draft core.Draft) (core.ImageSource, string) {
	switch p.effectiveImageSource(req) {
	case core.ImageSourceUpload:
		if req.ImageURL != "" {
			return core.ImageSourceUpload, req.ImageURL
		}
		return core.ImageSourceNone, ""
	case core.ImageSourcePexels:
		if p.provider == nil {
			return core.ImageSourceNone, ""
		}
		if imageURL := images.SearchFirst(ctx, p.provider, draft.ImageKeywords); imageURL != "" {
			return core.ImageSourcePexels, imageURL
		}
		return core.ImageSourceNone, ""
	default:
		return core.ImageSourceNone, ""
	}
}

// modelFor reports the model identifier that actually served the request.
func (p *Pipeline) modelFor(backendName, override string) string {
	if override != "" {
		return override
	}
	switch backendName {
	case "gemini":
		return p.cfg.AI.Gemini.Model
	case "openai":
		return p.cfg.AI.OpenAI.Model
	case "gptoss":
		return p.cfg.AI.GPTOSS.Model
	default:
		return ""
	}
}

func successBackend(attempts []core.Attempt) string {
	for _, a := range attempts {
		if a.Outcome == core.OutcomeSuccess {
			return a.Backend
		}
	}
	return ""
}
