package subtitle

import (
	"regexp"
	"strings"
)

// parenthetical matches sound cues such as "(door slams)" or "( MUSIC )".
var parenthetical = regexp.MustCompile(`^\(\s*[^)]*\s*\)$`)

type CleanStats struct {
	Total int
	Kept  int
}

func (s CleanStats) Removed() int {
	return s.Total - s.Kept
}

// Clean drops entries whose first text line is a parenthetical-only cue and
// renumbers the remaining entries from 1. The input slice is not modified.
func Clean(lines []Line) ([]Line, CleanStats) {
	stats := CleanStats{Total: len(lines)}
	kept := make([]Line, 0, len(lines))
	for _, line := range lines {
		first, _, _ := strings.Cut(line.Text, "\n")
		if parenthetical.MatchString(strings.TrimSpace(first)) {
			continue
		}
		line.Index = len(kept) + 1
		kept = append(kept, line)
	}
	stats.Kept = len(kept)
	return kept, stats
}
