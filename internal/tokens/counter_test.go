package tokens

import (
	"testing"

	"go.uber.org/zap"

	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func TestCounterFallbackEstimate(t *testing.T) {
	c := NewCounter("not-a-real-model", nopLogger())
	if got := c.Count("abcdefgh"); got != 2 {
		t.Fatalf("fallback estimate = %d, want 2", got)
	}
}

func TestCounterEmptyText(t *testing.T) {
	c := NewCounter("not-a-real-model", nopLogger())
	if got := c.Count(""); got != 0 {
		t.Fatalf("Count(\"\") = %d, want 0", got)
	}
}
