package subtitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	in := &File{Lines: []Line{
		{Index: 7, StartTime: time.Second, EndTime: 2 * time.Second, Text: "你好"},
		{Index: 9, StartTime: 3 * time.Second, EndTime: 4*time.Second + 250*time.Millisecond, Text: "first\nsecond"},
	}}

	w, err := NewWriter("utf-8")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("\xef\xbb\xbf"), raw[:3])

	out, err := NewReader().Read(path)
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	for i := range in.Lines {
		assert.Equal(t, i+1, out.Lines[i].Index)
		assert.Equal(t, in.Lines[i].StartTime, out.Lines[i].StartTime)
		assert.Equal(t, in.Lines[i].EndTime, out.Lines[i].EndTime)
		assert.Equal(t, in.Lines[i].Text, out.Lines[i].Text)
	}
}

func TestWrite_Big5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	w, err := NewWriter("big5")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, &File{Lines: []Line{
		{StartTime: 0, EndTime: time.Second, Text: "字幕"},
	}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "字幕")
	assert.NotContains(t, string(raw), "字幕")
}

func TestWrite_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.srt")
	w, err := NewWriter("")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, &File{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)

	assert.Error(t, w.Write(path, nil))
}

func TestNewWriter_UnknownEncoding(t *testing.T) {
	_, err := NewWriter("klingon-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output encoding")
}

func TestWrite_ReplacesExistingFileWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.srt")
	require.NoError(t, os.WriteFile(path, []byte(sampleSRT), 0o600))

	w, err := NewWriter("")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, &File{Lines: []Line{{StartTime: time.Second, EndTime: 2 * time.Second, Text: "bonjour"}}}))

	got, err := NewReader().Read(path)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "bonjour", got.Lines[0].Text)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "movie.srt", entries[0].Name())
}

func TestWrite_FailedReplaceKeepsTargetAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	// a non-empty directory cannot be replaced by a file
	target := filepath.Join(dir, "movie.en.srt")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "keep"), 0o755))

	w, err := NewWriter("")
	require.NoError(t, err)
	err = w.Write(target, &File{Lines: []Line{{StartTime: time.Second, EndTime: 2 * time.Second, Text: "x"}}})
	require.Error(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "movie.en.srt", entries[0].Name())
}
