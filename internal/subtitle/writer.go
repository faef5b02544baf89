package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultWriter writes SRT files in a fixed text encoding
type DefaultWriter struct {
	encoding encoding.Encoding
}

// NewWriter creates a subtitle writer for the named encoding (WHATWG labels
// such as "utf-8", "big5", "shift_jis"). An empty name means UTF-8.
func NewWriter(encodingName string) (Writer, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &DefaultWriter{encoding: enc}, nil
}

// LookupEncoding resolves an encoding label.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported output encoding %q: %w", name, err)
	}
	return enc, nil
}

// Write serialises subtitle as SRT to path. Entries are renumbered from 1.
// The file is written next to path and renamed over it, so path holds either
// its previous content or the complete new one.
func (w *DefaultWriter) Write(path string, subtitle *File) error {
	if subtitle == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	var raw []byte
	if len(subtitle.Lines) > 0 {
		var buf bytes.Buffer
		if err := toAstisub(subtitle.Lines).WriteToSRT(&buf); err != nil {
			return fmt.Errorf("failed to serialise subtitle: %w", err)
		}
		raw = bytes.TrimPrefix(buf.Bytes(), []byte("\xef\xbb\xbf"))
	}

	encoded, err := w.encoding.NewEncoder().Bytes(raw)
	if err != nil {
		return fmt.Errorf("failed to encode subtitle: %w", err)
	}

	return writeFileAtomic(path, encoded)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}

func toAstisub(lines []Line) *astisub.Subtitles {
	subs := astisub.NewSubtitles()
	for i, line := range lines {
		item := &astisub.Item{
			Index:   i + 1,
			StartAt: line.StartTime,
			EndAt:   line.EndTime,
		}
		for _, row := range strings.Split(line.Text, "\n") {
			item.Lines = append(item.Lines, astisub.Line{
				Items: []astisub.LineItem{{Text: row}},
			})
		}
		subs.Items = append(subs.Items, item)
	}
	return subs
}
