package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/tds-course/virtual-ta-backend/internal/clients/gcp"
	"github.com/tds-course/virtual-ta-backend/internal/clients/openai"
	"github.com/tds-course/virtual-ta-backend/internal/domain"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
	"github.com/tds-course/virtual-ta-backend/internal/store"
	"github.com/tds-course/virtual-ta-backend/internal/tokens"
)

const systemPrompt = `You are a TDS (Tools in Data Science) Virtual Teaching Assistant.
Answer student questions based on the provided course content, Discourse posts, and image text (if any).

Rules:
1. Use only information from the provided context
2. Be helpful, educational, and concise
3. Include relevant URLs from the context in your answer
4. For coding questions, prefer the exact models/versions mentioned in the context (e.g., gpt-3.5-turbo-0125)
5. If unsure, state that no relevant information was found

Response format: Provide a clear answer and include relevant links if available.`

// Questions mentioning any of these collect forum posts as candidate links.
var linkKeywords = []string{"gpt", "model", "api", "ga5"}

const (
	maxLinks      = 3
	linkTextLimit = 100

	// OCR failures degrade to fixed placeholder text instead of failing the
	// request; the model just sees less context.
	ocrFailedText = "Error processing image"
	ocrEmptyText  = "No text extracted from image"
)

// ErrNotConfigured is returned when no chat-completion API credential was
// provided at startup.
var ErrNotConfigured = errors.New("chat-completion client not configured")

// UpstreamError marks a failure of the hosted chat-completion API, as opposed
// to a failure inside this service.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat-completion API: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Answerer answers one student question per call. Implementations do not
// retry: a failed upstream call fails the whole request.
type Answerer interface {
	Answer(ctx context.Context, question string, imageBase64 string) (domain.AnswerResponse, error)
}

type answerService struct {
	log     *logger.Logger
	store   *store.Store
	chat    openai.Client // nil when no API key is configured
	ocr     gcp.Vision    // nil when OCR is disabled
	builder *ContextBuilder
}

func NewAnswerService(log *logger.Logger, st *store.Store, chat openai.Client, ocr gcp.Vision, estimator tokens.Estimator) Answerer {
	return &answerService{
		log:     log.With("service", "AnswerService"),
		store:   st,
		chat:    chat,
		ocr:     ocr,
		builder: NewContextBuilder(estimator),
	}
}

func (s *answerService) Answer(ctx context.Context, question string, imageBase64 string) (domain.AnswerResponse, error) {
	if s.chat == nil {
		return domain.AnswerResponse{}, ErrNotConfigured
	}

	imageText := ""
	if imageBase64 != "" {
		imageText = s.extractImageText(ctx, imageBase64)
	}

	contextText := s.builder.Build(question, s.store.Courses(), s.store.Topics(), imageText)

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
	answer, err := s.chat.ChatCompletion(ctx, systemPrompt, user)
	if err != nil {
		return domain.AnswerResponse{}, &UpstreamError{Err: err}
	}

	return domain.AnswerResponse{
		Answer: answer,
		Links:  s.extractLinks(question),
	}, nil
}

// extractImageText never fails the request: decode or OCR problems collapse
// into fixed placeholder text.
func (s *answerService) extractImageText(ctx context.Context, imageBase64 string) string {
	if s.ocr == nil {
		s.log.Warn("Image supplied but OCR is disabled")
		return ocrFailedText
	}
	img, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		s.log.Error("Image is not valid base64", "error", err)
		return ocrFailedText
	}
	text, err := s.ocr.ExtractText(ctx, img)
	if err != nil {
		s.log.Error("OCR extraction failed", "error", err)
		return ocrFailedText
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ocrEmptyText
	}
	return text
}

// extractLinks keyword-matches the question against the loaded forum topics.
// It is independent of the model's answer: candidates come from topic metadata
// in stable topic order, capped at maxLinks.
func (s *answerService) extractLinks(question string) []domain.Link {
	links := []domain.Link{}
	questionLower := strings.ToLower(question)

	matched := false
	for _, kw := range linkKeywords {
		if strings.Contains(questionLower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return links
	}

	for _, topic := range s.store.Topics() {
		for _, post := range topic.Posts {
			text := post.Content
			if len([]rune(text)) > linkTextLimit {
				text = truncateRunes(text, linkTextLimit) + "..."
			}
			links = append(links, domain.Link{
				URL:  fmt.Sprintf("%s/%d", topic.URL, post.PostNumber),
				Text: text,
			})
			if len(links) == maxLinks {
				return links
			}
		}
	}
	return links
}
