package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SplitName splits path into directory, stem and extension.
// e.g. "/a/movie.en.srt" -> "/a", "movie.en", ".srt"
func SplitName(path string) (dir, stem, ext string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	if ext == base {
		// dotfile such as ".srt"
		ext = ""
	}
	stem = strings.TrimSuffix(base, ext)
	return dir, stem, ext
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
