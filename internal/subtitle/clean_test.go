package subtitle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	in := []Line{
		{Index: 1, StartTime: time.Second, Text: "(door slams)"},
		{Index: 2, StartTime: 2 * time.Second, Text: "Who's there?"},
		{Index: 3, StartTime: 3 * time.Second, Text: "( MUSIC PLAYING )\nla la"},
		{Index: 4, StartTime: 4 * time.Second, Text: "Me (again)."},
		{Index: 5, StartTime: 5 * time.Second, Text: "Hi\n(laughs)"},
	}

	out, stats := Clean(in)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 2, stats.Removed())
	if assert.Len(t, out, 3) {
		assert.Equal(t, "Who's there?", out[0].Text)
		assert.Equal(t, "Me (again).", out[1].Text)
		assert.Equal(t, "Hi\n(laughs)", out[2].Text)
		for i, l := range out {
			assert.Equal(t, i+1, l.Index)
		}
		assert.Equal(t, 2*time.Second, out[0].StartTime)
	}
	assert.Equal(t, 2, in[1].Index)
}
