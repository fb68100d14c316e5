package store

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func TestLoadMissingFilesNonFatal(t *testing.T) {
	s := Load(t.TempDir(), nopLogger())
	if s.CourseCount() != 0 || s.TopicCount() != 0 || s.PostCount() != 0 {
		t.Fatalf("counts = %d/%d/%d, want all zero", s.CourseCount(), s.TopicCount(), s.PostCount())
	}
}

func TestLoadMalformedFileNonFatal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CourseContentFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := Load(dir, nopLogger())
	if s.CourseCount() != 0 {
		t.Fatalf("course count = %d, want 0 for malformed file", s.CourseCount())
	}
}

func TestLoadParsesBothFiles(t *testing.T) {
	dir := t.TempDir()
	courseJSON := `{
		"b.md": {"title": "B", "url": "https://tds.example/b", "raw_content": "bbb"},
		"a.md": {"title": "A", "url": "https://tds.example/a", "raw_content": "aaa", "scraped_at": "2025-01-01"}
	}`
	discourseJSON := `{
		"2": {"title": "Second", "url": "https://discourse.example/t/2", "posts": [{"post_number": 1, "content": "x"}]},
		"1": {"title": "First", "url": "https://discourse.example/t/1", "posts": [
			{"post_number": 1, "content": "y"},
			{"post_number": 2, "content": "z", "reply_to_post_number": 1}
		]}
	}`
	if err := os.WriteFile(filepath.Join(dir, CourseContentFile), []byte(courseJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DiscoursePostsFile), []byte(discourseJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := Load(dir, nopLogger())
	if s.CourseCount() != 2 || s.TopicCount() != 2 || s.PostCount() != 3 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/3", s.CourseCount(), s.TopicCount(), s.PostCount())
	}

	// Stable key order, independent of map iteration.
	if s.Courses()[0].Filename != "a.md" || s.Courses()[1].Filename != "b.md" {
		t.Fatalf("course order = %q, %q", s.Courses()[0].Filename, s.Courses()[1].Filename)
	}
	if s.Topics()[0].ID != "1" || s.Topics()[1].ID != "2" {
		t.Fatalf("topic order = %q, %q", s.Topics()[0].ID, s.Topics()[1].ID)
	}

	second := s.Topics()[0].Posts[1]
	if second.ReplyTo == nil || *second.ReplyTo != 1 {
		t.Fatalf("reply reference not parsed: %+v", second)
	}
	if s.Courses()[0].Title != "A" || s.Courses()[0].RawContent != "aaa" {
		t.Fatalf("course fields not parsed: %+v", s.Courses()[0])
	}
}
