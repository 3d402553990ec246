package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

type stubGenerator struct {
	name  string
	draft core.Draft
	err   error
	calls int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(ctx context.Context, req core.GenerationRequest) (core.Draft, error) {
	s.calls++
	if s.err != nil {
		return core.Draft{}, s.err
	}
	return s.draft, nil
}

func okDraft(title string) core.Draft {
	return core.Draft{
		Title:               title,
		BodyWithPlaceholder: "<p>본문</p>" + core.PlaceholderToken,
		Summary:             "요약",
		ImageKeywords:       "blog, content, article",
	}
}

func TestFallback_FirstBackendWins(t *testing.T) {
	first := &stubGenerator{name: "gemini", draft: okDraft("제목")}
	second := &stubGenerator{name: "openai", draft: okDraft("다른 제목")}

	f := NewFallback([]Generator{first, second}, "")
	draft, attempts, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if draft.Title != "제목" {
		t.Errorf("Title = %q, want %q", draft.Title, "제목")
	}
	if second.calls != 0 {
		t.Errorf("second backend called %d times, want 0", second.calls)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Outcome != core.OutcomeSuccess {
		t.Errorf("attempt outcome = %q, want success", attempts[0].Outcome)
	}
}

func TestFallback_AdvancesPastFailures(t *testing.T) {
	first := &stubGenerator{name: "gemini", err: errors.New("quota exceeded")}
	second := &stubGenerator{name: "openai", draft: okDraft("복구된 제목")}
	third := &stubGenerator{name: "gptoss", draft: okDraft("미사용")}

	f := NewFallback([]Generator{first, second, third}, "")
	draft, attempts, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if draft.Title != "복구된 제목" {
		t.Errorf("Title = %q, want recovery from second backend", draft.Title)
	}
	if third.calls != 0 {
		t.Errorf("third backend called after success, calls = %d", third.calls)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].Outcome == core.OutcomeSuccess {
		t.Error("first attempt recorded as success despite failure")
	}
	if attempts[1].Backend != "openai" || attempts[1].Outcome != core.OutcomeSuccess {
		t.Errorf("second attempt = %+v, want openai success", attempts[1])
	}
}

func TestFallback_PreferredBackendRunsFirst(t *testing.T) {
	gemini := &stubGenerator{name: "gemini", draft: okDraft("gemini")}
	oss := &stubGenerator{name: "gptoss", draft: okDraft("gptoss")}

	f := NewFallback([]Generator{gemini, oss}, "gptoss")
	draft, _, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if draft.Title != "gptoss" {
		t.Errorf("Title = %q, want preferred backend to win", draft.Title)
	}
	if gemini.calls != 0 {
		t.Errorf("non-preferred backend called first, calls = %d", gemini.calls)
	}
}

func TestFallback_PreferredFailureFallsBack(t *testing.T) {
	gemini := &stubGenerator{name: "gemini", draft: okDraft("gemini 복구")}
	oss := &stubGenerator{name: "gptoss", err: errors.New("connection refused")}

	f := NewFallback([]Generator{gemini, oss}, "gptoss")
	draft, attempts, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if draft.Title != "gemini 복구" {
		t.Errorf("Title = %q, want fallback draft", draft.Title)
	}
	if oss.calls != 1 {
		t.Errorf("preferred backend calls = %d, want exactly 1", oss.calls)
	}
	if attempts[0].Backend != "gptoss" {
		t.Errorf("first attempt backend = %q, want gptoss", attempts[0].Backend)
	}
}

func TestFallback_AllFailAggregatesError(t *testing.T) {
	first := &stubGenerator{name: "gemini", err: errors.New("quota exceeded")}
	second := &stubGenerator{name: "openai", err: errors.New("server down")}

	f := NewFallback([]Generator{first, second}, "")
	_, attempts, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err == nil {
		t.Fatal("Generate() error = nil, want aggregated failure")
	}
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Errorf("error does not wrap ErrAllBackendsFailed: %v", err)
	}
	if !strings.Contains(err.Error(), "openai") {
		t.Errorf("error does not name the last failed backend: %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(attempts))
	}
}

func TestFallback_NoBackendsConfigured(t *testing.T) {
	f := NewFallback(nil, "")
	_, _, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Errorf("error = %v, want ErrAllBackendsFailed", err)
	}
	if f.Available() {
		t.Error("Available() = true with no generators")
	}
}

func TestFallback_SkippedAttemptsPrecedeTrail(t *testing.T) {
	ok := &stubGenerator{name: "gptoss", draft: okDraft("제목")}
	f := &Fallback{
		generators: []Generator{ok},
		skipped: []core.Attempt{
			{Backend: "gemini", Outcome: core.OutcomeMissingConfig, Detail: "API key is not configured"},
		},
	}

	_, attempts, err := f.Generate(context.Background(), core.GenerationRequest{Seed: "여행"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want skipped + success", len(attempts))
	}
	if attempts[0].Outcome != core.OutcomeMissingConfig {
		t.Errorf("first attempt outcome = %q, want missing_config", attempts[0].Outcome)
	}
	if attempts[1].Outcome != core.OutcomeSuccess {
		t.Errorf("second attempt outcome = %q, want success", attempts[1].Outcome)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.AttemptOutcome
	}{
		{"deadline", context.DeadlineExceeded, core.OutcomeTimeout},
		{"empty response", ErrEmptyResponse, core.OutcomeParseFailure},
		{"missing key", ErrMissingAPIKey, core.OutcomeMissingConfig},
		{"generic", errors.New("connection refused"), core.OutcomeNetFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
