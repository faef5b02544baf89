package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Reader is the interface for reading subtitle files
type Reader interface {
	Read(path string) (*File, error)
}

// Writer is the interface for writing subtitle files
type Writer interface {
	Write(path string, subtitle *File) error
}

// Line represents a single subtitle entry
type Line struct {
	Index     int           // 1-based, reassigned on clean and save
	StartTime time.Duration // start time
	EndTime   time.Duration // end time
	Text      string        // subtitle text, multi-line text joined by "\n"
}

// File represents subtitle file
type File struct {
	Lines    []Line
	Language language.Tag // dominant language of the text, language.Und if unknown
	Format   string       // always SRT
	Path     string
}

// CloneLines returns a copy of lines that can be mutated independently.
func CloneLines(lines []Line) []Line {
	ret := make([]Line, len(lines))
	copy(ret, lines)
	return ret
}
