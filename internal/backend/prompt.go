package backend

import (
	"fmt"
	"strings"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
)

const (
	defaultTone     = "친근한"
	defaultAudience = "일반 대중"
	defaultMinChars = 2500
)

// BuildPrompt renders the shared generation prompt. Every backend sends the
// same prompt so their outputs stay interchangeable for the normalizer.
func BuildPrompt(req core.GenerationRequest) string {
	tone := req.Tone
	if tone == "" {
		tone = defaultTone
	}
	audience := req.Audience
	if audience == "" {
		audience = defaultAudience
	}
	minChars := req.MinChars
	if minChars <= 0 {
		minChars = defaultMinChars
	}

	var b strings.Builder
	b.WriteString("당신은 전문 블로그 작가입니다. 아래 내용을 바탕으로 한국어 블로그 포스트를 작성해주세요.\n\n")
	fmt.Fprintf(&b, "주제: %s\n", req.Seed)
	fmt.Fprintf(&b, "톤앤매너: %s\n", tone)
	fmt.Fprintf(&b, "대상 독자: %s\n", audience)
	if req.ImageHint != "" {
		fmt.Fprintf(&b, "이미지 힌트: %s\n", req.ImageHint)
	}
	b.WriteString("\n작성 지침:\n")
	fmt.Fprintf(&b, "- 본문은 최소 %d자 이상으로 풍부하고 상세하게 작성\n", minChars)
	b.WriteString("- 구조: 제목 → 소개 → [IMAGE_HERE] → 본문(2~4개 섹션) → 결론\n")
	b.WriteString("- [IMAGE_HERE] 표시는 정확히 한 번만 사용\n")
	b.WriteString("- 본문은 <h2>, <p> 등 HTML 태그로 구성\n")
	b.WriteString("- 실용적인 정보와 구체적인 예시 포함\n\n")
	b.WriteString("반드시 아래 JSON 형식으로만 응답하세요. JSON 외의 설명은 포함하지 마세요.\n\n")
	b.WriteString(`{
  "title": "매력적인 블로그 제목",
  "content_with_placeholder": "<p>소개 문단</p>[IMAGE_HERE]<h2>첫 번째 섹션</h2><p>내용</p><h2>결론</h2><p>마무리</p>",
  "summary": "핵심 내용을 한두 문장으로 요약",
  "image_search_keywords": "english, keywords, comma separated",
  "hashtags": "#키워드1 #키워드2 #키워드3"
}`)
	return b.String()
}
