// Package library finds subtitle files that still need translating.
package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/pkg/file"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

const backupDir = "backup"

type SkipReason string

const (
	SkipBackup         SkipReason = "in backup directory"
	SkipTranslated     SkipReason = "already translated"
	SkipDuplicate      SkipReason = "duplicate"
	SkipTargetLanguage SkipReason = "already in target language"
	SkipUnsupported    SkipReason = "not an .srt file"
)

type Skipped struct {
	Path   string
	Reason SkipReason
}

type Result struct {
	Files   []string
	Skipped []Skipped
}

// Count returns how many files were skipped for reason.
func (r *Result) Count(reason SkipReason) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

type scannerOptions struct {
	reader subtitle.Reader
	since  time.Time
}

type Option func(*scannerOptions)

// WithLanguageDetection reads every candidate and skips files whose text is
// already in the target language.
func WithLanguageDetection(reader subtitle.Reader) Option {
	return func(o *scannerOptions) {
		o.reader = reader
	}
}

// WithModifiedSince limits directory scans to files modified after t.
func WithModifiedSince(t time.Time) Option {
	return func(o *scannerOptions) {
		o.since = t
	}
}

type Scanner struct {
	target     lang.Language
	reader     subtitle.Reader
	since      time.Time
	translated *regexp.Regexp
}

func NewScanner(target lang.Language, opts ...Option) *Scanner {
	options := scannerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Scanner{
		target: target,
		reader: options.reader,
		since:  options.since,
		// movie.en.srt, movie.en_2.srt
		translated: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(target.Suffix()) + `(_\d+)?$`),
	}
}

// Scan collects .srt files from paths. Directories are walked recursively,
// files are taken as given. The result holds every path at most once, in
// discovery order.
func (s *Scanner) Scan(ctx context.Context, paths ...string) (*Result, error) {
	ret := &Result{Files: make([]string, 0)}
	seen := make(map[string]bool)

	// root is empty for files given directly
	add := func(root, path string) {
		path = absPath(path)
		if root != "" {
			root = absPath(root)
		}
		if seen[path] {
			ret.Skipped = append(ret.Skipped, Skipped{Path: path, Reason: SkipDuplicate})
			return
		}
		seen[path] = true

		if reason, skip := s.skip(root, path); skip {
			ret.Skipped = append(ret.Skipped, Skipped{Path: path, Reason: reason})
			return
		}
		ret.Files = append(ret.Files, path)
	}

	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add("", root)
			continue
		}

		candidates, err := s.walk(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			add(root, c)
		}
	}

	log.Debug("Scan found %d files, skipped %d", len(ret.Files), len(ret.Skipped))
	return ret, nil
}

func (s *Scanner) walk(ctx context.Context, root string) ([]string, error) {
	if !s.since.IsZero() {
		return file.FindRecentAfter(root, s.since, []string{subtitle.Ext}, backupDir)
	}

	ret := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), subtitle.Ext) {
			ret = append(ret, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return ret, nil
}

func (s *Scanner) skip(root, path string) (SkipReason, bool) {
	if !strings.EqualFold(filepath.Ext(path), subtitle.Ext) {
		return SkipUnsupported, true
	}
	if root != "" {
		if inBackupDir(root, path) {
			return SkipBackup, true
		}
		_, stem, _ := file.SplitName(path)
		if s.target.Valid() && s.translated.MatchString(stem) {
			return SkipTranslated, true
		}
	}

	if s.reader != nil {
		sub, err := s.reader.Read(path)
		if err != nil {
			log.Warn("Failed to read %s for language detection: %v", path, err)
			return "", false
		}
		if s.target.MatchesBase(sub.Language) {
			return SkipTargetLanguage, true
		}
	}
	return "", false
}

func inBackupDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.EqualFold(part, backupDir) {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
