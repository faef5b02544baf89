package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/asticode/go-astisub"
	"golang.org/x/text/language"
)

// Ext is the only subtitle extension read and written.
const Ext = ".srt"

// DefaultReader is the default subtitle file reader
type DefaultReader struct{}

// NewReader creates a new subtitle file reader
func NewReader() Reader {
	return &DefaultReader{}
}

// Read loads an SRT file into an ordered sequence of lines. Output is always
// written as SRT, so other formats are rejected rather than converted.
func (r *DefaultReader) Read(path string) (*File, error) {
	if !strings.EqualFold(filepath.Ext(path), Ext) {
		return nil, fmt.Errorf("unsupported subtitle format: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("subtitle file does not exist: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return ReadSRTBytes(data, path)
}

// ReadSRTBytes parses SRT content held in memory. name is recorded as the file path.
func ReadSRTBytes(data []byte, name string) (*File, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	subs, err := astisub.ReadFromSRT(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	return fromAstisub(subs, name), nil
}

func fromAstisub(subs *astisub.Subtitles, path string) *File {
	lines := make([]Line, 0, len(subs.Items))
	for i, item := range subs.Items {
		lines = append(lines, Line{
			Index:     i + 1,
			StartTime: item.StartAt,
			EndTime:   item.EndAt,
			Text:      itemText(item),
		})
	}

	return &File{
		Lines:    lines,
		Language: detectLanguage(lines),
		Format:   "SRT",
		Path:     path,
	}
}

// itemText joins the rows of item. Blank rows are dropped: astisub keeps the
// separator line that ends a file as an empty row of the last item.
func itemText(item *astisub.Item) string {
	rows := make([]string, 0, len(item.Lines))
	for _, l := range item.Lines {
		parts := make([]string, 0, len(l.Items))
		for _, li := range l.Items {
			parts = append(parts, li.Text)
		}
		if row := strings.TrimSpace(strings.Join(parts, " ")); row != "" {
			rows = append(rows, row)
		}
	}
	return strings.Join(rows, "\n")
}

// detectLanguage returns the most frequent language across all lines
func detectLanguage(lines []Line) language.Tag {
	if len(lines) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)
	for _, line := range lines {
		code := whatlanggo.DetectLang(line.Text).Iso6391()
		if code == "" {
			continue
		}
		langMap[code]++
	}

	// Get top language, ties broken by code so the result is stable
	var topLang string
	var topCount int
	for code, count := range langMap {
		if count > topCount || (count == topCount && code < topLang) {
			topLang = code
			topCount = count
		}
	}
	if topLang == "" {
		return language.Und
	}

	tag, err := language.Parse(topLang)
	if err != nil {
		return language.Und
	}
	return tag
}
