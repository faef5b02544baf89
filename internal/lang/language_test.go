package lang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Language
	}{
		{input: "English", want: English},
		{input: "  english ", want: English},
		{input: "en", want: English},
		{input: "英文", want: English},
		{input: "Traditional Chinese", want: TraditionalChinese},
		{input: "zh-TW", want: TraditionalChinese},
		{input: "繁體中文", want: TraditionalChinese},
		{input: "jp", want: Japanese},
		{input: "Malay", want: Malay},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_UnknownIsTypedError(t *testing.T) {
	got, err := Parse("Klingon")
	require.Error(t, err)
	assert.Equal(t, Unknown, got)

	var unknown *UnknownLanguageError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Klingon", unknown.Name)
}

func TestSuffixes(t *testing.T) {
	assert.Equal(t, ".en", English.Suffix())
	assert.Equal(t, ".zh_tw", TraditionalChinese.Suffix())
	assert.Equal(t, ".jp", Japanese.Suffix())
	assert.Equal(t, "", Unknown.Suffix())
}

func TestAll_EveryLanguageHasNameSuffixAndTag(t *testing.T) {
	all := All()
	require.Len(t, all, 16)
	seen := make(map[string]bool)
	for _, l := range all {
		assert.True(t, l.Valid())
		assert.NotEqual(t, "Unknown", l.String())
		assert.NotEmpty(t, l.Suffix())
		assert.NotEqual(t, language.Und, l.Tag())
		assert.False(t, seen[l.Suffix()], "duplicate suffix %s", l.Suffix())
		seen[l.Suffix()] = true

		roundTrip, err := Parse(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, roundTrip)
	}
}

func TestMatchesBase(t *testing.T) {
	assert.True(t, TraditionalChinese.MatchesBase(language.Chinese))
	assert.True(t, English.MatchesBase(language.MustParse("en-GB")))
	assert.False(t, English.MatchesBase(language.Japanese))
	assert.False(t, English.MatchesBase(language.Und))
}

func TestTextMarshalling(t *testing.T) {
	b, err := Korean.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Korean", string(b))

	var l Language
	require.NoError(t, l.UnmarshalText([]byte("ko")))
	assert.Equal(t, Korean, l)
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}
