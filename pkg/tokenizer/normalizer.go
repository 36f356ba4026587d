package tokenizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidUTF8 is returned when input bytes are not valid UTF-8.
// Tokenization fails without partial output.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// NormalizeMode selects how raw input is canonicalized before analysis.
// The mode is resolved once when the tokenizer is created.
type NormalizeMode int

const (
	// NormalizeNone passes input through unchanged.
	NormalizeNone NormalizeMode = iota
	// NormalizeNFKC applies Unicode NFKC compatibility normalization
	// (full-width Latin folding, half-width katakana composition, etc.).
	NormalizeNFKC
	// NormalizeNFKCCaseFold applies NFKC followed by lowercasing.
	NormalizeNFKCCaseFold
)

// ParseNormalizeMode maps a configuration string to a NormalizeMode.
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch s {
	case "", "nfkc":
		return NormalizeNFKC, nil
	case "none":
		return NormalizeNone, nil
	case "nfkc_casefold":
		return NormalizeNFKCCaseFold, nil
	}
	return 0, fmt.Errorf("%w: unknown normalize mode %q", ErrConfig, s)
}

// anchor ties a rune index in the normalized text to the byte offset in
// the original input where the contributing span starts. Anchors are
// non-decreasing in both fields.
type anchor struct {
	norm int // rune index into normalized text
	orig int // byte offset into original input
}

// NormalizedText holds analyzer-ready text together with the offset
// table needed to translate normalized rune ranges back to byte ranges
// of the original, unmodified input.
type NormalizedText struct {
	// Text is the normalized form handed to the analyzer.
	Text string

	origLen int
	anchors []anchor // terminated by a sentinel {rune count, origLen}
}

// Normalizer canonicalizes raw input for the analyzer while recording
// enough anchors to recover original byte offsets.
type Normalizer struct {
	mode NormalizeMode
}

// NewNormalizer creates a normalizer for the given mode.
func NewNormalizer(mode NormalizeMode) *Normalizer {
	return &Normalizer{mode: mode}
}

// Mode reports the configured normalization mode.
func (n *Normalizer) Mode() NormalizeMode { return n.mode }

// Normalize canonicalizes input and builds the offset table.
// Invalid UTF-8 fails with ErrInvalidUTF8 and no partial output.
func (n *Normalizer) Normalize(input string) (*NormalizedText, error) {
	if !utf8.ValidString(input) {
		return nil, ErrInvalidUTF8
	}

	if n.mode == NormalizeNone {
		return identityNormalized(input), nil
	}

	nt := &NormalizedText{origLen: len(input)}
	var b strings.Builder
	b.Grow(len(input))

	var it norm.Iter
	it.InitString(norm.NFKC, input)

	pos := 0      // byte offset of the current chunk in input
	emitted := 0  // runes written to the normalized text so far
	pending := "" // normalized output not yet matched to an input advance
	for !it.Done() {
		seg := it.Next()
		next := it.Pos()

		chunk := string(seg)
		if n.mode == NormalizeNFKCCaseFold {
			chunk = strings.ToLower(chunk)
		}

		b.WriteString(chunk)
		pending += chunk

		// One-to-many expansions surface as several segments before the
		// input position moves; hold them until the full chunk is known.
		if next == pos {
			continue
		}

		nt.appendChunk(input[pos:next], pending, pos, &emitted)
		pending = ""
		pos = next
	}
	if pending != "" {
		nt.appendChunk(input[pos:], pending, pos, &emitted)
	}

	nt.anchors = append(nt.anchors, anchor{norm: emitted, orig: len(input)})
	nt.Text = b.String()
	return nt, nil
}

// appendChunk records anchors for one normalization chunk. When the
// chunk preserves the rune count it anchors every rune individually so
// offsets stay tight; a many-to-one or one-to-many chunk gets a single
// anchor spanning the full contributing original range, which widens any
// token touching it to the whole span rather than guessing a split.
func (nt *NormalizedText) appendChunk(orig, normalized string, origStart int, emitted *int) {
	if utf8.RuneCountInString(orig) == utf8.RuneCountInString(normalized) {
		off := 0
		for _, r := range orig {
			nt.anchors = append(nt.anchors, anchor{norm: *emitted, orig: origStart + off})
			off += utf8.RuneLen(r)
			*emitted++
		}
		return
	}

	nt.anchors = append(nt.anchors, anchor{norm: *emitted, orig: origStart})
	*emitted += utf8.RuneCountInString(normalized)
}

func identityNormalized(input string) *NormalizedText {
	nt := &NormalizedText{Text: input, origLen: len(input)}
	i := 0
	off := 0
	for _, r := range input {
		nt.anchors = append(nt.anchors, anchor{norm: i, orig: off})
		off += utf8.RuneLen(r)
		i++
	}
	nt.anchors = append(nt.anchors, anchor{norm: i, orig: len(input)})
	return nt
}

// ByteRange translates a rune range of the normalized text into a byte
// range of the original input. The start maps to the last anchor at or
// before it and the end to the first anchor at or after it, so a range
// that touches a collapsed unit covers that unit's full original span
// and never splits a multi-byte character. Equidistant candidates
// resolve to the leftmost boundary.
func (nt *NormalizedText) ByteRange(start, end int) (int, int) {
	if len(nt.anchors) == 0 || start >= end {
		return 0, 0
	}

	// Last anchor with norm <= start.
	i := sort.Search(len(nt.anchors), func(i int) bool {
		return nt.anchors[i].norm > start
	})
	origStart := 0
	if i > 0 {
		origStart = nt.anchors[i-1].orig
	}

	// First anchor with norm >= end.
	j := sort.Search(len(nt.anchors), func(i int) bool {
		return nt.anchors[i].norm >= end
	})
	origEnd := nt.origLen
	if j < len(nt.anchors) {
		origEnd = nt.anchors[j].orig
	}

	return origStart, origEnd
}
