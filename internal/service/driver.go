package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/output"
	"github.com/etklam/srt-subtitle-translator/internal/prompt"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/internal/translator"
	"github.com/etklam/srt-subtitle-translator/pkg/file"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

const BackupDirName = "backup"

// Driver runs a single Job through
// pending, backing up, translating, resolving, saving or skipped, done.
type Driver struct {
	reader   subtitle.Reader
	writer   subtitle.Writer
	batch    *translator.BatchTranslator
	prompts  *prompt.Provider
	resolver *output.Resolver
}

func NewDriver(
	reader subtitle.Reader,
	writer subtitle.Writer,
	batch *translator.BatchTranslator,
	prompts *prompt.Provider,
	resolver *output.Resolver,
) *Driver {
	return &Driver{
		reader:   reader,
		writer:   writer,
		batch:    batch,
		prompts:  prompts,
		resolver: resolver,
	}
}

// BackupPath returns where the pre-translation copy of sourcePath goes.
func BackupPath(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), BackupDirName, filepath.Base(sourcePath))
}

// Run executes job and reports its progress on events, which may be nil.
// A skipped job returns a Result in StateSkipped and a nil error.
func (d *Driver) Run(ctx context.Context, job Job, events chan<- Event) (*Result, error) {
	res := &Result{JobID: job.ID, SourcePath: job.SourcePath, State: StatePending}
	emit := func(e Event) {
		if events == nil {
			return
		}
		e.JobID = job.ID
		e.Source = job.SourcePath
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	enter := func(s State) {
		res.State = s
		log.Debug("Job %s %s: %s", job.ID, s, job.SourcePath)
		emit(Event{Kind: EventState, State: s})
	}
	fail := func(err error) (*Result, error) {
		res.State = StateFailed
		log.Error("Job %s failed: %v", job.ID, err)
		if hint := Hint(err); hint != "" {
			log.Info("Hint: %s", hint)
		}
		emit(Event{Kind: EventFailed, State: StateFailed, Err: err})
		return res, err
	}

	enter(StatePending)
	sub, err := d.reader.Read(job.SourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(WrapError(err, ErrFileNotFound, "source not found").WithContext("path", job.SourcePath))
		}
		return fail(WrapError(err, ErrFileRead, "failed to read source").WithContext("path", job.SourcePath))
	}
	if job.SourceLanguage.Valid() && !job.SourceLanguage.MatchesBase(sub.Language) && sub.Language != language.Und {
		log.Warn("%s looks like %s, not %s", job.SourcePath, sub.Language, job.SourceLanguage)
	}

	if job.ReplaceOriginal {
		enter(StateBackingUp)
		backup, err := Backup(job.SourcePath)
		if err != nil {
			log.Warn("Backup of %s failed: %v", job.SourcePath, err)
			emit(Event{Kind: EventWarning, State: StateBackingUp, Message: "backup failed", Err: err})
		} else {
			res.BackupPath = backup
		}
	}

	lines := sub.Lines
	if job.Clean {
		var stats subtitle.CleanStats
		lines, stats = subtitle.Clean(lines)
		res.Removed = stats.Removed()
		log.Info("Cleaned %s: kept %d of %d entries", job.SourcePath, stats.Kept, stats.Total)
	}

	enter(StateTranslating)
	translated, stats, err := d.batch.Translate(ctx, lines, translator.Options{
		SystemPrompt: d.prompts.Resolve(job.UseAltPrompt),
		Target:       job.TargetLanguage,
		Model:        job.Model,
		BatchSize:    job.BatchSize,
		Debug:        job.Debug,
	}, func(done, total int) {
		emit(Event{Kind: EventProgress, State: StateTranslating, Done: done, Total: total})
	})
	res.Stats = stats
	if err != nil {
		return fail(WrapError(err, ErrCancelled, "translation interrupted"))
	}
	log.Info("Translated %d/%d entries of %s", stats.Translated, stats.Total, job.SourcePath)

	enter(StateResolving)
	path, ok, err := d.resolver.Resolve(ctx, job.SourcePath, job.TargetLanguage, job.ReplaceOriginal)
	if err != nil {
		return fail(WrapError(err, ErrFileWrite, "failed to resolve output path"))
	}
	if !ok {
		res.State = StateSkipped
		log.Info("Skipped %s", job.SourcePath)
		emit(Event{Kind: EventSkipped, State: StateSkipped})
		return res, nil
	}

	enter(StateSaving)
	if err := d.writer.Write(path, &subtitle.File{
		Lines:    translated,
		Language: job.TargetLanguage.Tag(),
		Format:   sub.Format,
		Path:     path,
	}); err != nil {
		return fail(WrapError(err, ErrFileWrite, "failed to save translation").WithContext("path", path))
	}

	res.OutputPath = path
	res.State = StateDone
	log.Info("Saved %s", path)
	emit(Event{Kind: EventCompleted, State: StateDone, OutputPath: path})
	return res, nil
}

// Backup copies sourcePath into the sibling backup directory.
func Backup(sourcePath string) (string, error) {
	dst := BackupPath(sourcePath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := file.CopyFile(sourcePath, dst); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", sourcePath, err)
	}
	return dst, nil
}

// Executor adapts the driver to the jobs queue. events may be nil.
func (d *Driver) Executor(events chan<- Event) jobs.Executor {
	return func(ctx context.Context, queued *jobs.TranslationJob) (*jobs.Outcome, error) {
		var (
			res *Result
			err error
		)
		err = SafeExecute(func() error {
			job, err := JobFromPayload(queued.ID, queued.Payload)
			if err != nil {
				if events != nil {
					select {
					case events <- Event{JobID: queued.ID, Source: queued.Payload.SourcePath, Kind: EventFailed, State: StateFailed, Err: err}:
					case <-ctx.Done():
					}
				}
				return err
			}
			res, err = d.Run(ctx, job, events)
			return err
		})
		if err != nil {
			return nil, err
		}

		return &jobs.Outcome{
			Skipped:    res.State == StateSkipped,
			OutputPath: res.OutputPath,
			Total:      res.Stats.Total,
			Translated: res.Stats.Translated,
			Failed:     res.Stats.Failed,
		}, nil
	}
}
