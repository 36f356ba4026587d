package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// Token is one output token with byte offsets into the original,
// unmodified input. Colocated tokens are alternate forms (reading, base
// form, stem, synonym) sharing their primary token's position and byte
// range, so a query in one script can match content indexed in another.
type Token struct {
	// Text is the token text, from the normalized form of the input.
	Text string `json:"text"`
	// Start and End are byte offsets into the original input.
	Start int `json:"start"`
	End   int `json:"end"`
	// Position is the logical slot used for phrase and proximity
	// matching. It advances once per primary token only.
	Position int `json:"position"`
	// Colocated marks an alternate form indexed at the primary
	// token's position.
	Colocated bool `json:"colocated,omitempty"`
}

// emitter expands one lexeme into its primary token plus colocated
// variants. All expansion choices are resolved once at create time so
// the per-token path is branch-light.
type emitter struct {
	readings  bool
	baseForms bool
	stemLang  string
	kataStem  bool
	userDict  *UserDictionary
}

// expand appends the primary token and its colocated variants for one
// lexeme to dst and returns it. Variants carry the primary byte range
// and position; duplicates of already-emitted text at this position are
// dropped. Colocation can be disabled wholesale (prefix queries).
func (e *emitter) expand(dst []Token, lx lexeme, start, end, position int, colocate bool) []Token {
	primary := lx.surface
	if e.kataStem {
		primary = stemKatakana(primary)
	}

	dst = append(dst, Token{
		Text:     primary,
		Start:    start,
		End:      end,
		Position: position,
	})
	if !colocate {
		return dst
	}

	variant := func(text string) {
		if text == "" || text == primary {
			return
		}
		for i := len(dst) - 1; i >= 0 && dst[i].Position == position; i-- {
			if dst[i].Text == text {
				return
			}
		}
		dst = append(dst, Token{
			Text:      text,
			Start:     start,
			End:       end,
			Position:  position,
			Colocated: true,
		})
	}

	if e.readings {
		variant(lx.reading)
	}
	if e.baseForms {
		variant(lx.baseForm)
	}
	if e.stemLang != "" && isLatinWord(primary) {
		if stemmed, err := snowball.Stem(primary, e.stemLang, true); err == nil {
			variant(stemmed)
		}
	}
	if e.userDict != nil {
		for _, syn := range e.userDict.Lookup(lx.surface) {
			variant(syn)
		}
	}

	return dst
}

// stemKatakana trims a single trailing prolonged sound mark from
// katakana tokens of four or more runes, so ユーザー and ユーザ index
// identically. Offsets always cover the untrimmed original span.
func stemKatakana(s string) string {
	runes := []rune(s)
	if len(runes) < 4 || runes[len(runes)-1] != 'ー' {
		return s
	}
	for _, r := range runes[:len(runes)-1] {
		if !unicode.In(r, unicode.Katakana) && r != 'ー' {
			return s
		}
	}
	return string(runes[:len(runes)-1])
}

func isLatinWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.In(r, unicode.Latin) {
			return false
		}
	}
	return true
}

// matchesStopTags reports whether a lexeme's leading part-of-speech
// feature is in the configured stop set.
func matchesStopTags(stopTags []string, pos []string) bool {
	if len(pos) == 0 {
		return false
	}
	joined := strings.Join(pos, ",")
	for _, tag := range stopTags {
		// A tag matches the leading feature or a hierarchical prefix
		// like 名詞,固有名詞.
		if pos[0] == tag || strings.HasPrefix(joined, tag+",") || joined == tag {
			return true
		}
	}
	return false
}
