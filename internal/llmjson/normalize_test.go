package llmjson

import (
	"strings"
	"testing"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

const cleanJSON = `{
  "title": "자동차 보험 비교 가이드",
  "content_with_placeholder": "<h1>자동차 보험</h1><p>소개 문단입니다.</p>[IMAGE_HERE]<h2>비교 포인트</h2><p>본문.</p>",
  "summary": "자동차 보험을 고르는 기준을 정리했습니다.",
  "image_search_keywords": "car insurance, driving, contract",
  "hashtags": "#자동차보험 #보험비교"
}`

func TestNormalize_CleanJSON(t *testing.T) {
	draft := Normalize(cleanJSON)

	if draft.Title != "자동차 보험 비교 가이드" {
		t.Errorf("unexpected title: %q", draft.Title)
	}
	if !strings.Contains(draft.BodyWithPlaceholder, "<h2>비교 포인트</h2>") {
		t.Errorf("body lost content: %q", draft.BodyWithPlaceholder)
	}
	if draft.ImageKeywords != "car insurance, driving, contract" {
		t.Errorf("unexpected keywords: %q", draft.ImageKeywords)
	}
	if draft.Hashtags != "#자동차보험 #보험비교" {
		t.Errorf("unexpected hashtags: %q", draft.Hashtags)
	}
}

func TestNormalize_CodeFencedJSON(t *testing.T) {
	fenced := "```json\n" + cleanJSON + "\n```"
	draft := Normalize(fenced)
	if draft.Title != "자동차 보험 비교 가이드" {
		t.Errorf("code fence not stripped, title: %q", draft.Title)
	}
}

func TestNormalize_JSONEmbeddedInProse(t *testing.T) {
	noisy := "알겠습니다. 요청하신 블로그 포스트입니다.\n\n" + cleanJSON + "\n\n도움이 되었기를 바랍니다!"
	draft := Normalize(noisy)
	if draft.Title != "자동차 보험 비교 가이드" {
		t.Errorf("embedded JSON not extracted, title: %q", draft.Title)
	}
	if strings.Contains(draft.BodyWithPlaceholder, "도움이 되었기를") {
		t.Errorf("trailing prose leaked into body: %q", draft.BodyWithPlaceholder)
	}
}

func TestNormalize_BracesInsideStrings(t *testing.T) {
	// The body contains literal braces; naive last-} slicing would cut here.
	input := `{"title": "CSS 팁", "content_with_placeholder": "<p>예: body { margin: 0; }</p>", "summary": "CSS", "image_search_keywords": "css, code"}`
	draft := Normalize(input)
	if draft.Title != "CSS 팁" {
		t.Errorf("unexpected title: %q", draft.Title)
	}
	if !strings.Contains(draft.BodyWithPlaceholder, "{ margin: 0; }") {
		t.Errorf("brace content mangled: %q", draft.BodyWithPlaceholder)
	}
}

func TestNormalize_TruncatedJSONRepaired(t *testing.T) {
	truncated := `{"title": "중고차 구매 체크리스트", "content_with_placeholder": "<h1>중고차</h1><p>본문</p>", "summary": "요약"`
	draft := Normalize(truncated)
	if draft.Title != "중고차 구매 체크리스트" {
		t.Errorf("truncated JSON not repaired, title: %q", draft.Title)
	}
	if draft.Summary != "요약" {
		t.Errorf("truncated JSON lost summary: %q", draft.Summary)
	}
	// Keywords were cut off entirely and must be defaulted.
	if draft.ImageKeywords == "" {
		t.Error("keywords should be defaulted, got empty")
	}
}

func TestRepairTruncated_AppendsExactBraceCount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int // unmatched opens the repair must close
	}{
		{"one level", `{"a": "b"`, 1},
		{"two levels", `{"a": {"b": "c"`, 2},
		{"three levels", `{"a": {"b": {"c": "d"`, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repaired, ok := repairTruncated(tc.in)
			if !ok {
				t.Fatalf("repair failed for %q", tc.in)
			}
			if got := strings.Count(repaired, "}") - strings.Count(tc.in, "}"); got != tc.want {
				t.Errorf("appended %d closers, want %d", got, tc.want)
			}
			if _, complete := ExtractObject(repaired); !complete {
				t.Errorf("repaired string is not a complete object: %q", repaired)
			}
		})
	}
}

func TestRepairTruncated_MidStringNotRepairable(t *testing.T) {
	if _, ok := repairTruncated(`{"title": "cut off here`); ok {
		t.Error("truncation inside a string literal should not be repairable")
	}
}

func TestNormalize_PureNoise(t *testing.T) {
	draft := Normalize("이 텍스트에는 JSON이 전혀 없습니다. 그냥 평범한 문장들만 있습니다.\n두 번째 줄도 마찬가지입니다.")
	assertComplete(t, draft)
	if !strings.Contains(draft.BodyWithPlaceholder, core.PlaceholderToken) {
		t.Error("synthesized body should carry a placeholder")
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	draft := Normalize("")
	assertComplete(t, draft)
	if draft.Title != "AI 생성 블로그 포스트" {
		t.Errorf("empty input should produce the default title, got %q", draft.Title)
	}
}

func TestNormalize_TotalDefaulting(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t  ",
		"{",
		"}",
		"{}",
		`{"title": ""}`,
		`{"unrelated": 42}`,
		"```json\n```",
		strings.Repeat("x", 5000),
		`prose before {"title": "t1", "content_with_placeholder": "<p>b</p>"} prose after`,
	}
	for _, in := range inputs {
		draft := Normalize(in)
		assertComplete(t, draft)
	}
}

func TestNormalize_PlaceholderCardinality(t *testing.T) {
	doubled := `{"title": "t", "content_with_placeholder": "<p>a</p>[IMAGE_HERE]<p>b</p>[IMAGE_HERE]<p>c</p>", "summary": "s", "image_search_keywords": "k"}`
	draft := Normalize(doubled)
	if n := strings.Count(draft.BodyWithPlaceholder, core.PlaceholderToken); n != 1 {
		t.Errorf("expected exactly 1 placeholder, got %d", n)
	}
	if !strings.Contains(draft.BodyWithPlaceholder, "<p>c</p>") {
		t.Errorf("content after duplicate placeholder lost: %q", draft.BodyWithPlaceholder)
	}
}

func TestNormalize_BodyWithPlaceholderKeyAccepted(t *testing.T) {
	alt := `{"title": "t", "body_with_placeholder": "<p>alt key</p>", "summary": "s", "image_query_keywords": "alt, keys"}`
	draft := Normalize(alt)
	if draft.BodyWithPlaceholder != "<p>alt key</p>" {
		t.Errorf("alternate body key ignored: %q", draft.BodyWithPlaceholder)
	}
	if draft.ImageKeywords != "alt, keys" {
		t.Errorf("alternate keywords key ignored: %q", draft.ImageKeywords)
	}
}

func TestNormalize_MissingTitleDefaultsSummaryFromTitle(t *testing.T) {
	in := `{"content_with_placeholder": "<p>본문만 있습니다</p>"}`
	draft := Normalize(in)
	if draft.Title == "" {
		t.Fatal("title must be synthesized")
	}
	if draft.Summary != draft.Title {
		t.Errorf("summary should default to title, got %q vs %q", draft.Summary, draft.Title)
	}
}

func TestExtractObject_IgnoresLeadingProse(t *testing.T) {
	got, ok := ExtractObject(`note: {"a": {"b": 1}} trailing`)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if got != `{"a": {"b": 1}}` {
		t.Errorf("unexpected extraction: %q", got)
	}
}

func assertComplete(t *testing.T, d core.Draft) {
	t.Helper()
	if d.Title == "" {
		t.Error("title is empty")
	}
	if d.BodyWithPlaceholder == "" {
		t.Error("body is empty")
	}
	if d.Summary == "" {
		t.Error("summary is empty")
	}
	if d.ImageKeywords == "" {
		t.Error("image keywords are empty")
	}
	if n := strings.Count(d.BodyWithPlaceholder, core.PlaceholderToken); n > 1 {
		t.Errorf("placeholder appears %d times, want at most 1", n)
	}
}
