// Package backend contains the interchangeable text-generation backends and
// the fallback orchestrator that sequences them.
package backend

import (
	"context"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

// Generator is the uniform contract every generation backend implements.
// Generate issues one (retried) network call, normalizes the raw model
// output and returns a complete Draft, or an error describing why this
// backend could not produce one.
type Generator interface {
	// Name returns the backend identifier used in config, attempt
	// records and logs ("gemini", "openai", "gptoss").
	Name() string

	Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, error)
}
