package services

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tds-course/virtual-ta-backend/internal/clients/openai"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
	"github.com/tds-course/virtual-ta-backend/internal/store"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fakeChat struct {
	lastSystem string
	lastUser   string
	calls      int
	reply      string
	err        error
}

func (f *fakeChat) ChatCompletion(_ context.Context, system string, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

func (f *fakeOCR) Close() error { return nil }

const longPost = "clarification: the GA5 grader pins the completion model to gpt-3.5-turbo-0125, so answers from gpt-4o-mini will not match the expected output"

func testStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()

	courseJSON := `{
		"project.md": {"title": "Project Guidelines", "url": "https://tds.example/project", "raw_content": "Use the tools taught in class."}
	}`
	discourseJSON := `{
		"155939": {
			"title": "GA5 Question 8 Clarification",
			"url": "https://discourse.example/t/ga5-question-8/155939",
			"posts": [
				{"post_number": 1, "content": "` + longPost + `"},
				{"post_number": 3, "content": "short answer"},
				{"post_number": 4, "content": "another reply"},
				{"post_number": 5, "content": "a fourth reply that must be dropped"}
			]
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, store.CourseContentFile), []byte(courseJSON), 0o644); err != nil {
		t.Fatalf("write course file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, store.DiscoursePostsFile), []byte(discourseJSON), 0o644); err != nil {
		t.Fatalf("write discourse file: %v", err)
	}
	return store.Load(dir, nopLogger())
}

func TestAnswerNoKeywordNoLinks(t *testing.T) {
	chat := &fakeChat{reply: "See the course notes."}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, nil, charEstimator{})

	resp, err := svc.Answer(context.Background(), "When is the project deadline?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "See the course notes." {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if len(resp.Links) != 0 {
		t.Fatalf("links = %d, want 0 for keyword-free question", len(resp.Links))
	}
}

func TestAnswerKeywordCollectsLinks(t *testing.T) {
	chat := &fakeChat{reply: "Use gpt-3.5-turbo-0125."}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, nil, charEstimator{})

	resp, err := svc.Answer(context.Background(), "Which GPT model should I use?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Links) != 3 {
		t.Fatalf("links = %d, want capped at 3", len(resp.Links))
	}
	if !strings.Contains(resp.Links[0].URL, "155939") {
		t.Fatalf("link url %q does not embed the topic id", resp.Links[0].URL)
	}
	if resp.Links[0].URL != "https://discourse.example/t/ga5-question-8/155939/1" {
		t.Fatalf("link url = %q", resp.Links[0].URL)
	}
}

func TestAnswerLinkTextTruncation(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, nil, charEstimator{})

	resp, err := svc.Answer(context.Background(), "ga5 grading", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long := resp.Links[0].Text
	if len([]rune(long)) != 103 || !strings.HasSuffix(long, "...") {
		t.Fatalf("long post text = %q (len %d), want 100 chars + ellipsis", long, len([]rune(long)))
	}
	if resp.Links[1].Text != "short answer" {
		t.Fatalf("short post text = %q, want exact content", resp.Links[1].Text)
	}
}

func TestAnswerUpstreamErrorClassified(t *testing.T) {
	chat := &fakeChat{err: &openai.HTTPError{StatusCode: 503, Body: "overloaded"}}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, nil, charEstimator{})

	_, err := svc.Answer(context.Background(), "anything", "")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	var httpErr *openai.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Fatalf("upstream status not preserved: %v", err)
	}
}

func TestAnswerNotConfigured(t *testing.T) {
	svc := NewAnswerService(nopLogger(), testStore(t), nil, nil, charEstimator{})

	_, err := svc.Answer(context.Background(), "anything", "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAnswerImageTextReachesContext(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	ocr := &fakeOCR{text: "error code 42 in the screenshot"}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, ocr, charEstimator{})

	img := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	if _, err := svc.Answer(context.Background(), "what is this error?", img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(chat.lastUser, "error code 42 in the screenshot") {
		t.Fatalf("OCR text missing from model input")
	}
	if !strings.Contains(chat.lastUser, "Question: what is this error?") {
		t.Fatalf("question missing from model input")
	}
}

func TestAnswerOCRFailureDegrades(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	ocr := &fakeOCR{err: errors.New("vision unavailable")}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, ocr, charEstimator{})

	img := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	if _, err := svc.Answer(context.Background(), "what is this error?", img); err != nil {
		t.Fatalf("OCR failure must not fail the request: %v", err)
	}
	if !strings.Contains(chat.lastUser, ocrFailedText) {
		t.Fatalf("placeholder for failed OCR missing from model input")
	}
}

func TestAnswerEmptyOCRPlaceholder(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	ocr := &fakeOCR{text: "   "}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, ocr, charEstimator{})

	img := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	if _, err := svc.Answer(context.Background(), "what is this?", img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(chat.lastUser, ocrEmptyText) {
		t.Fatalf("placeholder for empty OCR output missing from model input")
	}
}

func TestAnswerInvalidBase64Degrades(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	ocr := &fakeOCR{text: "should not be reached"}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, ocr, charEstimator{})

	if _, err := svc.Answer(context.Background(), "what is this?", "%%%not-base64%%%"); err != nil {
		t.Fatalf("bad image must not fail the request: %v", err)
	}
	if !strings.Contains(chat.lastUser, ocrFailedText) {
		t.Fatalf("placeholder for undecodable image missing from model input")
	}
}

func TestAnswerSystemPromptFixed(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	svc := NewAnswerService(nopLogger(), testStore(t), chat, nil, charEstimator{})

	if _, err := svc.Answer(context.Background(), "hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(chat.lastSystem, "Use only information from the provided context") {
		t.Fatalf("system prompt missing grounding rule")
	}
}
