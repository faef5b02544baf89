package file

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FindRecentAfter returns files under dir modified after startTime whose
// extension matches one of exts (all files when exts is empty).
// Directories named in skipDirs are not descended into.
func FindRecentAfter(dir string, startTime time.Time, exts []string, skipDirs ...string) ([]string, error) {
	var recentFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && containsFold(skipDirs, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.ModTime().After(startTime) {
			return nil
		}
		if len(exts) > 0 && !containsFold(exts, filepath.Ext(path)) {
			return nil
		}
		recentFiles = append(recentFiles, path)
		return nil
	})

	return recentFiles, err
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
