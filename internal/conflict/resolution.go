// Package conflict decides what happens when a translation's output file
// already exists.
package conflict

import (
	"context"
	"fmt"
	"strings"
)

type Resolution int

const (
	Overwrite Resolution = iota + 1
	Rename
	Skip
)

func (r Resolution) String() string {
	switch r {
	case Overwrite:
		return "overwrite"
	case Rename:
		return "rename"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseResolution accepts the full name or its first letter.
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "o", "overwrite":
		return Overwrite, nil
	case "r", "rename":
		return Rename, nil
	case "s", "skip":
		return Skip, nil
	}
	return 0, fmt.Errorf("unknown conflict resolution %q", s)
}

// Decider chooses a Resolution for an existing output path. It must always
// return one of the three resolutions.
type Decider interface {
	Decide(ctx context.Context, path string) Resolution
}

// Fixed is a Decider that always answers with the same resolution.
type Fixed Resolution

func (f Fixed) Decide(context.Context, string) Resolution {
	return Resolution(f)
}
