package translator

import (
	"context"

	"github.com/etklam/srt-subtitle-translator/internal/lang"
)

// Client translates a single piece of text. A false result is the failure
// marker: the caller keeps the source text unchanged. Implementations must be
// safe for concurrent use.
type Client interface {
	Translate(ctx context.Context, text, systemPrompt string, target lang.Language, model string) (string, bool)
}

// ModelLister lists the models the inference server offers.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ProgressFunc receives the number of entries processed so far and the total.
type ProgressFunc func(done, total int)

type Options struct {
	SystemPrompt string
	Target       lang.Language
	Model        string
	BatchSize    int
	Debug        bool // log every original/translated pair
}

type Stats struct {
	Total      int
	Translated int
	Failed     int
}
