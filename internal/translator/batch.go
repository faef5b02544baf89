package translator

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

// BatchTranslator translates subtitle lines in consecutive batches. Entries
// inside a batch are translated concurrently; batches run one after another.
type BatchTranslator struct {
	client      Client
	concurrency int
}

// NewBatchTranslator creates a BatchTranslator. concurrency is the number of
// requests the inference server handles in parallel; values below 1 mean
// "as many as the batch size".
func NewBatchTranslator(client Client, concurrency int) *BatchTranslator {
	return &BatchTranslator{
		client:      client,
		concurrency: concurrency,
	}
}

type result struct {
	text string
	ok   bool
}

// Translate returns a copy of lines with every successfully translated entry
// replaced by the trimmed result. Count, order and timing always match the
// input. A failed or blank result keeps the source text. The only error is ctx's.
func (t *BatchTranslator) Translate(
	ctx context.Context,
	lines []subtitle.Line,
	opts Options,
	progress ProgressFunc,
) ([]subtitle.Line, Stats, error) {
	out := subtitle.CloneLines(lines)
	stats := Stats{Total: len(lines)}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	limit := batchSize
	if t.concurrency > 0 && t.concurrency < limit {
		limit = t.concurrency
	}

	for start := 0; start < len(out); start += batchSize {
		if err := ctx.Err(); err != nil {
			return out, stats, err
		}

		end := min(start+batchSize, len(out))
		results := make([]result, end-start)

		var g errgroup.Group
		g.SetLimit(limit)
		for i := start; i < end; i++ {
			text := out[i].Text
			slot := &results[i-start]
			g.Go(func() error {
				slot.text, slot.ok = t.client.Translate(ctx, text, opts.SystemPrompt, opts.Target, opts.Model)
				return nil
			})
		}
		_ = g.Wait()

		for i, r := range results {
			line := &out[start+i]
			text := strings.TrimSpace(r.text)
			if !r.ok || text == "" {
				stats.Failed++
				log.Debug("line %d left untranslated", line.Index)
				continue
			}
			if opts.Debug {
				log.Debug("original: %s | translated: %s", line.Text, text)
			}
			line.Text = text
			stats.Translated++
		}

		if progress != nil {
			progress(end, len(out))
		}
	}

	return out, stats, ctx.Err()
}
