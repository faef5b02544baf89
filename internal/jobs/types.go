package jobs

import (
	"path/filepath"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusFailed
}

type EnqueueRequest struct {
	Source    string // who asked: "cli" or "watch"
	DedupeKey string
	Payload   JobPayload
}

// JobPayload is everything needed to run one file's translation.
type JobPayload struct {
	SourcePath      string `json:"source_path"`
	SourceLanguage  string `json:"source_language"`
	TargetLanguage  string `json:"target_language"`
	Model           string `json:"model"`
	BatchSize       int    `json:"batch_size"`
	ReplaceOriginal bool   `json:"replace_original"`
	UseAltPrompt    bool   `json:"use_alt_prompt"`
	Clean           bool   `json:"clean"`
	Debug           bool   `json:"debug"`
}

// DedupeKey identifies a source file and target language pair.
func DedupeKey(sourcePath, targetLanguage string) string {
	if abs, err := filepath.Abs(sourcePath); err == nil {
		sourcePath = abs
	}
	return filepath.Clean(sourcePath) + "|" + strings.ToLower(targetLanguage)
}

// Outcome is what a successful executor run reports back to the queue.
type Outcome struct {
	Skipped    bool
	OutputPath string
	Total      int
	Translated int
	Failed     int
}

type TranslationJob struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	DedupeKey  string     `json:"dedupe_key"`
	Payload    JobPayload `json:"payload"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
	Total      int        `json:"total"`
	Translated int        `json:"translated"`
	Failed     int        `json:"failed"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
