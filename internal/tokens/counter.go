package tokens

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
)

// Estimator estimates how many model tokens a piece of text encodes to.
type Estimator interface {
	Count(text string) int
}

// Counter estimates token counts with the BPE vocabulary of the target chat
// model. When the encoding cannot be loaded it falls back to a bytes/4
// heuristic, which is close enough for the budget check it feeds.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func NewCounter(model string, log *logger.Logger) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if log != nil {
			log.Warn("Tokenizer unavailable, falling back to byte estimate", "model", model, "error", err)
		}
		return &Counter{}
	}
	return &Counter{enc: enc}
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
