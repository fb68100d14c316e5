package services

import (
	"fmt"
	"strings"

	"github.com/tds-course/virtual-ta-backend/internal/domain"
	"github.com/tds-course/virtual-ta-backend/internal/tokens"
)

const (
	imageTextLimit     = 1000
	courseExcerptLimit = 2000
	postExcerptLimit   = 1000

	// The over-budget check counts tokens but the truncation cuts characters.
	// That mismatch is inherited behavior: the budget only has to bound the
	// payload, not hit an exact token count.
	contextTokenBudget = 12000
	contextCharLimit   = 12000
)

// ContextBuilder assembles the text block sent to the chat model: optional
// OCR text, course page excerpts, then forum post excerpts, bounded by an
// approximate token budget.
type ContextBuilder struct {
	estimator tokens.Estimator
}

func NewContextBuilder(estimator tokens.Estimator) *ContextBuilder {
	return &ContextBuilder{estimator: estimator}
}

// Build is a pure function of its inputs: same courses, topics, question and
// image text always produce the same context string.
func (b *ContextBuilder) Build(question string, courses []domain.CourseContent, topics []domain.Topic, imageText string) string {
	parts := []string{}

	if imageText != "" {
		parts = append(parts, "=== IMAGE CONTENT ===")
		parts = append(parts, truncateRunes(imageText, imageTextLimit))
	}

	parts = append(parts, "\n=== COURSE CONTENT ===")
	for _, c := range courses {
		parts = append(parts, fmt.Sprintf("\n## %s", c.Title))
		parts = append(parts, fmt.Sprintf("URL: %s", c.URL))
		parts = append(parts, truncateRunes(c.RawContent, courseExcerptLimit))
	}

	parts = append(parts, "\n\n=== DISCOURSE POSTS ===")
	for _, t := range topics {
		parts = append(parts, fmt.Sprintf("\n## %s", t.Title))
		parts = append(parts, fmt.Sprintf("URL: %s", t.URL))
		for _, p := range t.Posts {
			parts = append(parts, fmt.Sprintf("Post #%d: %s", p.PostNumber, truncateRunes(p.Content, postExcerptLimit)))
		}
	}

	text := strings.Join(parts, "\n")
	if b.estimator.Count(text) > contextTokenBudget {
		text = truncateRunes(text, contextCharLimit)
	}
	return text
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
