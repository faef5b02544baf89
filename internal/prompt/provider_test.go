package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve(t *testing.T) {
	both := writePrompts(t, "prompts.json", `{"default_prompt": "translate plainly", "alt_prompt": "translate casually"}`)
	defaultOnly := writePrompts(t, "prompts.yaml", "default_prompt: |\n  translate plainly\n")
	emptyDefault := writePrompts(t, "empty.yaml", "default_prompt: \"  \"\n")
	malformed := writePrompts(t, "bad.json", `{"default_prompt": `)
	padded := writePrompts(t, "padded.json", `{"default_prompt": "  You translate subtitles.\n\nKeep line breaks.\n", "alt_prompt": " \n"}`)

	tests := []struct {
		name   string
		path   string
		useAlt bool
		want   string
	}{
		{name: "default", path: both, want: "translate plainly"},
		{name: "alternate", path: both, useAlt: true, want: "translate casually"},
		{name: "alternate missing falls back to default", path: defaultOnly, useAlt: true, want: "translate plainly\n"},
		{name: "kept verbatim", path: padded, want: "  You translate subtitles.\n\nKeep line breaks.\n"},
		{name: "blank alternate falls back to default", path: padded, useAlt: true, want: "  You translate subtitles.\n\nKeep line breaks.\n"},
		{name: "empty default", path: emptyDefault, want: Fallback()},
		{name: "malformed", path: malformed, want: Fallback()},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), useAlt: true, want: Fallback()},
		{name: "no path", path: "", want: Fallback()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewProvider(tt.path).Resolve(tt.useAlt))
		})
	}
}

func TestFallbackIsEmbedded(t *testing.T) {
	assert.Contains(t, Fallback(), "Output only the translated text")
}
