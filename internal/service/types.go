package service

import (
	"fmt"

	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/translator"
)

// Job is one file's translation request. It does not change once started.
type Job struct {
	ID              string
	SourcePath      string
	SourceLanguage  lang.Language
	TargetLanguage  lang.Language
	Model           string
	BatchSize       int
	Debug           bool
	ReplaceOriginal bool
	UseAltPrompt    bool
	Clean           bool
}

// JobFromPayload validates a queued payload and resolves its languages.
func JobFromPayload(id string, p jobs.JobPayload) (Job, error) {
	if p.SourcePath == "" {
		return Job{}, NewError(ErrValidation, "source path is empty")
	}
	target, err := lang.Parse(p.TargetLanguage)
	if err != nil {
		return Job{}, WrapError(err, ErrValidation, "invalid target language")
	}
	source := lang.Unknown
	if p.SourceLanguage != "" {
		if source, err = lang.Parse(p.SourceLanguage); err != nil {
			return Job{}, WrapError(err, ErrValidation, "invalid source language")
		}
	}
	batch := p.BatchSize
	if batch < 1 {
		return Job{}, NewError(ErrValidation, fmt.Sprintf("batch size must be at least 1, got %d", batch))
	}

	return Job{
		ID:              id,
		SourcePath:      p.SourcePath,
		SourceLanguage:  source,
		TargetLanguage:  target,
		Model:           p.Model,
		BatchSize:       batch,
		Debug:           p.Debug,
		ReplaceOriginal: p.ReplaceOriginal,
		UseAltPrompt:    p.UseAltPrompt,
		Clean:           p.Clean,
	}, nil
}

type State int

const (
	StatePending State = iota
	StateBackingUp
	StateTranslating
	StateResolving
	StateSaving
	StateSkipped
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBackingUp:
		return "backing up"
	case StateTranslating:
		return "translating"
	case StateResolving:
		return "resolving"
	case StateSaving:
		return "saving"
	case StateSkipped:
		return "skipped"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventState EventKind = iota
	EventProgress
	EventWarning
	EventCompleted
	EventSkipped
	EventFailed
)

// Event reports a job's progress to whoever renders the run.
type Event struct {
	JobID      string
	Source     string
	Kind       EventKind
	State      State
	Done       int
	Total      int
	OutputPath string
	Message    string
	Err        error
}

// String renders the event as a per-file log line.
func (e Event) String() string {
	switch e.Kind {
	case EventCompleted:
		return "completed: " + e.OutputPath
	case EventSkipped:
		return "skipped: " + e.Source
	case EventWarning:
		if e.Err != nil {
			return fmt.Sprintf("warning: %s (%v)", e.Message, e.Err)
		}
		return "warning: " + e.Message
	case EventFailed:
		return fmt.Sprintf("failed: %s: %v", e.Source, e.Err)
	case EventProgress:
		return fmt.Sprintf("progress: %s %d/%d", e.Source, e.Done, e.Total)
	default:
		return fmt.Sprintf("%s: %s", e.State, e.Source)
	}
}

// Result describes a finished job.
type Result struct {
	JobID      string
	SourcePath string
	OutputPath string // empty when skipped
	BackupPath string // empty unless the backup succeeded
	State      State
	Removed    int // entries dropped by the clean pass
	Stats      translator.Stats
}
