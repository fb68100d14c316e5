package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tds-course/virtual-ta-backend/internal/domain"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
)

const (
	CourseContentFile  = "course_content.json"
	DiscoursePostsFile = "discourse_posts.json"
)

// Store holds the pre-scraped course material and forum posts. It is populated
// once during startup and read-only afterwards, so concurrent request handlers
// can share it without locking.
type Store struct {
	log *logger.Logger

	courses []domain.CourseContent
	topics  []domain.Topic

	postCount int
}

// Load reads course_content.json and discourse_posts.json from dir. A missing
// or unreadable file is not fatal: the service runs with an empty map and
// degraded answers. Entries are ordered by key so context assembly is stable
// across restarts.
func Load(dir string, log *logger.Logger) *Store {
	s := &Store{log: log.With("service", "Store")}

	var (
		courseByFile map[string]domain.CourseContent
		topicByID    map[string]domain.Topic
	)

	var g errgroup.Group
	g.Go(func() error {
		courseByFile = loadJSONMap[domain.CourseContent](filepath.Join(dir, CourseContentFile), s.log)
		return nil
	})
	g.Go(func() error {
		topicByID = loadJSONMap[domain.Topic](filepath.Join(dir, DiscoursePostsFile), s.log)
		return nil
	})
	_ = g.Wait()

	for name := range courseByFile {
		c := courseByFile[name]
		c.Filename = name
		s.courses = append(s.courses, c)
	}
	sort.Slice(s.courses, func(i, j int) bool { return s.courses[i].Filename < s.courses[j].Filename })

	for id := range topicByID {
		t := topicByID[id]
		t.ID = id
		s.topics = append(s.topics, t)
		s.postCount += len(t.Posts)
	}
	sort.Slice(s.topics, func(i, j int) bool { return s.topics[i].ID < s.topics[j].ID })

	s.log.Info("Data files loaded",
		"dir", dir,
		"course_files", len(s.courses),
		"discourse_topics", len(s.topics),
		"discourse_posts", s.postCount,
	)
	return s
}

func loadJSONMap[T any](path string, log *logger.Logger) map[string]T {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Data file not found, starting with empty set", "path", path)
		} else {
			log.Warn("Data file unreadable, starting with empty set", "path", path, "error", err)
		}
		return map[string]T{}
	}
	out := map[string]T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn("Data file is not valid JSON, starting with empty set", "path", path, "error", err)
		return map[string]T{}
	}
	return out
}

// Courses returns the loaded course pages in stable (filename) order.
func (s *Store) Courses() []domain.CourseContent { return s.courses }

// Topics returns the loaded forum topics in stable (topic id) order.
func (s *Store) Topics() []domain.Topic { return s.topics }

func (s *Store) CourseCount() int { return len(s.courses) }
func (s *Store) TopicCount() int  { return len(s.topics) }
func (s *Store) PostCount() int   { return s.postCount }
