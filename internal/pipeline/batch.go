package pipeline

import (
	"context"
	"time"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

// BatchResult pairs one batch entry with its outcome.
type BatchResult struct {
	Request Request `json:"request"`
	Result  Result  `json:"result"`
	Err     string  `json:"error,omitempty"`
}

// BatchRunner runs a list of requests sequentially with a fixed delay
// between items so upstream APIs are not hammered.
type BatchRunner struct {
	pipeline *Pipeline
	delay    time.Duration
}

// NewBatchRunner builds a runner with the configured inter-item delay.
func NewBatchRunner(p *Pipeline, delay time.Duration) *BatchRunner {
	if delay < 0 {
		delay = 0
	}
	return &BatchRunner{pipeline: p, delay: delay}
}

// Run processes every request in order. A failed item is recorded and the
// batch continues; cancellation stops between items.
func (b *BatchRunner) Run(ctx context.Context, requests []Request) []BatchResult {
	results := make([]BatchResult, 0, len(requests))
	for i, req := range requests {
		if i > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("batch cancelled", "completed", len(results), "total", len(requests))
				return results
			case <-time.After(b.delay):
			}
		}

		res, err := b.pipeline.Run(ctx, req)
		item := BatchResult{Request: req, Result: res}
		if err != nil {
			item.Err = err.Error()
			logger.Warn("batch item failed", "index", i, "seed", req.Seed, "error", err.Error())
		} else {
			logger.Info("batch item complete", "index", i, "post_id", res.Post.ID)
		}
		results = append(results, item)

		if ctx.Err() != nil {
			return results
		}
	}
	return results
}

// Start runs the batch in the background and invokes done (if non-nil) with
// the collected results once finished.
func (b *BatchRunner) Start(ctx context.Context, requests []Request, done func([]BatchResult)) {
	go func() {
		results := b.Run(ctx, requests)
		if done != nil {
			done(results)
		}
	}()
}
