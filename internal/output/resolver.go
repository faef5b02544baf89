// Package output computes where a translated subtitle is written.
package output

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/etklam/srt-subtitle-translator/internal/conflict"
	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/pkg/file"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

// Resolver maps a source path and target language to an output path,
// consulting a conflict.Decider when that path is taken.
type Resolver struct {
	decider conflict.Decider
}

func NewResolver(decider conflict.Decider) *Resolver {
	if decider == nil {
		decider = conflict.Fixed(conflict.Rename)
	}
	return &Resolver{decider: decider}
}

// TargetPath returns {dir}/{stem}{suffix}{ext} for sourcePath.
func TargetPath(sourcePath string, target lang.Language) string {
	dir, stem, ext := file.SplitName(sourcePath)
	return filepath.Join(dir, stem+target.Suffix()+ext)
}

// Resolve returns the path to write to. ok is false when the job must be
// skipped. replaceOriginal returns sourcePath without any collision check.
func (r *Resolver) Resolve(ctx context.Context, sourcePath string, target lang.Language, replaceOriginal bool) (string, bool, error) {
	if replaceOriginal {
		return sourcePath, true, nil
	}
	if !target.Valid() {
		return "", false, &lang.UnknownLanguageError{Name: target.String()}
	}

	path := TargetPath(sourcePath, target)
	exists, err := file.Exists(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to check output path: %w", err)
	}
	if !exists {
		return path, true, nil
	}

	res := r.decider.Decide(ctx, path)
	log.Debug("Output %s exists, resolution: %s", path, res)
	switch res {
	case conflict.Overwrite:
		return path, true, nil
	case conflict.Skip:
		return "", false, nil
	default:
		renamed, err := nextFree(sourcePath, target)
		if err != nil {
			return "", false, err
		}
		return renamed, true, nil
	}
}

// nextFree returns the first {stem}{suffix}_N{ext} that does not exist, N >= 1.
func nextFree(sourcePath string, target lang.Language) (string, error) {
	dir, stem, ext := file.SplitName(sourcePath)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%s_%d%s", stem, target.Suffix(), n, ext))
		exists, err := file.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check output path: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
