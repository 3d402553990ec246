package backend

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

// Fallback tries configured backends in order until one produces a draft.
// The preferred backend (if any) runs first, followed by the remaining
// backends in default priority order, each tried at most once.
type Fallback struct {
	generators []Generator
	preferred  string
	skipped    []core.Attempt
}

// NewFallback builds an orchestrator over an explicit generator list. The
// list order is the default priority; preferred moves one backend to the
// front.
func NewFallback(generators []Generator, preferred string) *Fallback {
	return &Fallback{generators: generators, preferred: preferred}
}

// FromConfig constructs every backend the configuration allows. Backends
// whose construction fails (usually a missing API key) are recorded as
// skipped attempts instead of aborting, so the rest of the chain still runs.
func FromConfig(cfg *config.Config) *Fallback {
	f := &Fallback{preferred: cfg.AI.PreferredBackend}

	add := func(name string, g Generator, err error) {
		if err != nil {
			logger.Warn("generation backend unavailable", "backend", name, "reason", err.Error())
			f.skipped = append(f.skipped, core.Attempt{
				Backend: name,
				Outcome: core.OutcomeMissingConfig,
				Detail:  err.Error(),
			})
			return
		}
		f.generators = append(f.generators, g)
	}

	gemini, err := NewGemini(cfg.AI.Gemini)
	add("gemini", gemini, err)
	oa, err := NewOpenAI(cfg.AI.OpenAI)
	add("openai", oa, err)
	oss, err := NewGPTOSS(cfg.AI.GPTOSS)
	add("gptoss", oss, err)

	return f
}

// Available reports whether at least one backend was constructed.
func (f *Fallback) Available() bool { return len(f.generators) > 0 }

// Generate walks the backend chain and returns the first successful draft
// together with the full attempt trail. When every backend fails, the error
// wraps ErrAllBackendsFailed and names the last failure.
func (f *Fallback) Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, []core.Attempt, error) {
	attempts := append([]core.Attempt(nil), f.skipped...)

	var (
		lastErr  error
		lastName string
		number   int
	)
	for _, g := range f.ordered() {
		number++
		draft, err := g.Generate(ctx, req)
		if err != nil {
			lastErr, lastName = err, g.Name()
			attempts = append(attempts, core.Attempt{
				Backend: g.Name(),
				Number:  number,
				Outcome: classify(err),
				Detail:  err.Error(),
			})
			logger.Warn("generation backend failed", "backend", g.Name(), "attempt", number, "error", err.Error())
			if ctx.Err() != nil {
				break
			}
			continue
		}
		attempts = append(attempts, core.Attempt{
			Backend: g.Name(),
			Number:  number,
			Outcome: core.OutcomeSuccess,
		})
		logger.Info("content generated", "backend", g.Name(), "attempt", number, "title", draft.Title)
		return draft, attempts, nil
	}

	if lastErr == nil {
		return core.Draft{}, attempts, fmt.Errorf("%w: 사용 가능한 백엔드가 없습니다", ErrAllBackendsFailed)
	}
	return core.Draft{}, attempts, fmt.Errorf("%w: last backend %s: %v", ErrAllBackendsFailed, lastName, lastErr)
}

// ordered returns the generator chain with the preferred backend (when
// present) moved to the front. The underlying slice is never mutated.
func (f *Fallback) ordered() []Generator {
	if f.preferred == "" {
		return f.generators
	}
	ordered := make([]Generator, 0, len(f.generators))
	for _, g := range f.generators {
		if g.Name() == f.preferred {
			ordered = append(ordered, g)
		}
	}
	for _, g := range f.generators {
		if g.Name() != f.preferred {
			ordered = append(ordered, g)
		}
	}
	return ordered
}

// classify maps a backend error onto an attempt outcome for the trail.
func classify(err error) core.AttemptOutcome {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.OutcomeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return core.OutcomeTimeout
	case errors.Is(err, ErrEmptyResponse):
		return core.OutcomeParseFailure
	case errors.Is(err, ErrMissingAPIKey):
		return core.OutcomeMissingConfig
	default:
		return core.OutcomeNetFailure
	}
}
