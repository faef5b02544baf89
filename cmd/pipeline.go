package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/etklam/srt-subtitle-translator/internal/config"
	"github.com/etklam/srt-subtitle-translator/internal/conflict"
	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/llm"
	"github.com/etklam/srt-subtitle-translator/internal/output"
	"github.com/etklam/srt-subtitle-translator/internal/persistence"
	"github.com/etklam/srt-subtitle-translator/internal/prompt"
	"github.com/etklam/srt-subtitle-translator/internal/service"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/internal/translator"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

// pipeline is everything a run needs: the job driver, the queue feeding it
// and the conflict front end.
type pipeline struct {
	cfg    *config.Config
	driver *service.Driver
	queue  *jobs.Queue
	broker *conflict.Broker
	store  *persistence.SQLiteStore
}

// newPipeline wires the driver. A non-empty autoPolicy replaces the
// configured conflict policy, as watch mode does.
func newPipeline(cfg *config.Config, autoPolicy string) (*pipeline, error) {
	client, err := llm.NewClient(cfg.LLM.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create inference client: %w", err)
	}
	writer, err := subtitle.NewWriter(cfg.Translate.Encoding)
	if err != nil {
		return nil, err
	}

	p := &pipeline{cfg: cfg}

	var decider conflict.Decider
	policy := cfg.Translate.ConflictPolicy
	if autoPolicy != "" {
		policy = autoPolicy
	}
	if policy == config.PolicyPrompt {
		p.broker = conflict.NewBroker(cfg.ConflictCountdown())
		decider = p.broker
	} else {
		res, err := conflict.ParseResolution(policy)
		if err != nil {
			return nil, err
		}
		decider = conflict.Fixed(res)
	}

	p.driver = service.NewDriver(
		subtitle.NewReader(),
		writer,
		translator.NewBatchTranslator(translator.NewLLMClient(client, cfg.LLM.Temperature), cfg.LLM.Parallel),
		prompt.NewProvider(cfg.Translate.PromptsFile),
		output.NewResolver(decider),
	)

	var store jobs.Store
	if cfg.History.Enabled {
		s, err := persistence.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			log.Warn("Run history disabled: %v", err)
		} else {
			p.store = s
			store = s
		}
	}
	p.queue = jobs.NewQueue(cfg.Translate.Workers, store)
	return p, nil
}

func (p *pipeline) Close() {
	p.queue.Stop()
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			log.Error("Failed to close history: %v", err)
		}
	}
}

// payload builds the queued form of a job for sourcePath.
func (p *pipeline) payload(sourcePath string) jobs.JobPayload {
	t := p.cfg.Translate
	return jobs.JobPayload{
		SourcePath:      sourcePath,
		SourceLanguage:  t.SourceLanguage,
		TargetLanguage:  t.TargetLanguage,
		Model:           p.cfg.LLM.Model,
		BatchSize:       t.BatchSize,
		ReplaceOriginal: t.ReplaceOriginal,
		UseAltPrompt:    t.AltPrompt,
		Clean:           t.Clean,
		Debug:           t.Debug,
	}
}

// serveConflicts answers broker requests on the terminal until ctx ends.
// Without a terminal, or with a fixed policy, nothing is served and
// conflicts fall back to the broker's countdown.
func (p *pipeline) serveConflicts(ctx context.Context, prompter *conflict.Prompter) {
	if p.broker == nil || prompter == nil {
		return
	}
	go prompter.Serve(ctx, p.broker.Requests())
}

// syncWriter lets the event printer and the command share one output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}

// printEvents writes the per-file log until events is closed.
func printEvents(out io.Writer, events <-chan service.Event) {
	for e := range events {
		switch e.Kind {
		case service.EventState:
			continue
		case service.EventProgress:
			log.Debug("%s", e)
		default:
			fmt.Fprintln(out, e.String())
		}
	}
}

func summaryRows(run []*jobs.TranslationJob) [][]string {
	rows := make([][]string, 0, len(run))
	for _, job := range run {
		rows = append(rows, []string{
			job.Payload.SourcePath,
			string(job.Status),
			job.OutputPath,
			strconv.Itoa(job.Translated) + "/" + strconv.Itoa(job.Total),
			strconv.Itoa(job.Failed),
		})
	}
	return rows
}

var summaryHeaders = []string{"File", "Status", "Output", "Translated", "Failed"}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
