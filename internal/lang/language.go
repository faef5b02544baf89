// Package lang defines the set of languages subtitles can be translated into
// together with the filename suffix each one maps to.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Language int

const (
	Unknown Language = iota
	TraditionalChinese
	English
	Japanese
	Korean
	French
	German
	Spanish
	Italian
	Portuguese
	Russian
	Arabic
	Hindi
	Indonesian
	Vietnamese
	Thai
	Malay
)

type entry struct {
	name    string   // display name, used in prompts
	suffix  string   // inserted before the file extension
	tag     language.Tag
	aliases []string // extra lookup keys, lower-cased
}

var table = map[Language]entry{
	TraditionalChinese: {"Traditional Chinese", ".zh_tw", language.TraditionalChinese, []string{"zh_tw", "zh-tw", "zh-hant", "繁體中文"}},
	English:            {"English", ".en", language.English, []string{"en", "eng", "英文"}},
	Japanese:           {"Japanese", ".jp", language.Japanese, []string{"ja", "jp", "jpn", "日文"}},
	Korean:             {"Korean", ".ko", language.Korean, []string{"ko", "kor", "韓文"}},
	French:             {"French", ".fr", language.French, []string{"fr", "fra", "法文"}},
	German:             {"German", ".de", language.German, []string{"de", "deu", "德文"}},
	Spanish:            {"Spanish", ".es", language.Spanish, []string{"es", "spa", "西班牙文"}},
	Italian:            {"Italian", ".it", language.Italian, []string{"it", "ita", "義大利文"}},
	Portuguese:         {"Portuguese", ".pt", language.Portuguese, []string{"pt", "por", "葡萄牙文"}},
	Russian:            {"Russian", ".ru", language.Russian, []string{"ru", "rus", "俄文"}},
	Arabic:             {"Arabic", ".ar", language.Arabic, []string{"ar", "ara", "阿拉伯文"}},
	Hindi:              {"Hindi", ".hi", language.Hindi, []string{"hi", "hin", "印地文"}},
	Indonesian:         {"Indonesian", ".id", language.Indonesian, []string{"id", "ind", "印尼文"}},
	Vietnamese:         {"Vietnamese", ".vi", language.Vietnamese, []string{"vi", "vie", "越南文"}},
	Thai:               {"Thai", ".th", language.Thai, []string{"th", "tha", "泰文"}},
	Malay:              {"Malay", ".ms", language.Malay, []string{"ms", "msa", "馬來文"}},
}

var byKey map[string]Language

func init() {
	byKey = make(map[string]Language, len(table)*4)
	for l, e := range table {
		byKey[strings.ToLower(e.name)] = l
		for _, a := range e.aliases {
			byKey[strings.ToLower(a)] = l
		}
	}
}

// UnknownLanguageError is returned when a name does not match any supported language.
type UnknownLanguageError struct {
	Name string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language %q", e.Name)
}

// Parse resolves a display name, ISO code or alias to a Language.
func Parse(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if l, ok := byKey[key]; ok {
		return l, nil
	}
	return Unknown, &UnknownLanguageError{Name: name}
}

// MustParse is Parse for package-level constants and tests.
func MustParse(name string) Language {
	l, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Language) Valid() bool {
	_, ok := table[l]
	return ok
}

// String returns the display name, e.g. "Traditional Chinese".
func (l Language) String() string {
	if e, ok := table[l]; ok {
		return e.name
	}
	return "Unknown"
}

// Suffix returns the filename suffix, e.g. ".en".
func (l Language) Suffix() string {
	return table[l].suffix
}

// Tag returns the BCP 47 tag of the language, language.Und when unknown.
func (l Language) Tag() language.Tag {
	if e, ok := table[l]; ok {
		return e.tag
	}
	return language.Und
}

// MatchesBase reports whether tag shares the base language of l.
func (l Language) MatchesBase(tag language.Tag) bool {
	if !l.Valid() || tag == language.Und {
		return false
	}
	a, _ := l.Tag().Base()
	b, _ := tag.Base()
	return a == b
}

// All returns every supported language in declaration order.
func All() []Language {
	ret := make([]Language, 0, len(table))
	for l := TraditionalChinese; l <= Malay; l++ {
		ret = append(ret, l)
	}
	return ret
}

func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Language) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
