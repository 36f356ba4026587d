package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"
)

// ErrAnalysis is returned when the morphological analyzer fails or
// produces output violating its ordering guarantees. It fails the
// current tokenize call only; the shared dictionary stays valid.
var ErrAnalysis = errors.New("morphological analysis failed")

// SegmentationMode selects the analyzer's segmentation strategy.
type SegmentationMode int

const (
	// SegmentNormal is regular morpheme segmentation.
	SegmentNormal SegmentationMode = iota
	// SegmentSearch additionally splits long compounds for recall.
	SegmentSearch
	// SegmentExtended also splits unknown words into unigrams.
	SegmentExtended
)

// ParseSegmentationMode maps a configuration string to a SegmentationMode.
func ParseSegmentationMode(s string) (SegmentationMode, error) {
	switch s {
	case "", "search":
		return SegmentSearch, nil
	case "normal":
		return SegmentNormal, nil
	case "extended":
		return SegmentExtended, nil
	}
	return 0, fmt.Errorf("%w: unknown segmentation mode %q", ErrConfig, s)
}

func (m SegmentationMode) kagome() kagome.TokenizeMode {
	switch m {
	case SegmentNormal:
		return kagome.Normal
	case SegmentExtended:
		return kagome.Extended
	default:
		return kagome.Search
	}
}

// lexeme is one analyzer-produced lexical unit. Start and end are rune
// indices into the normalized text the analyzer saw, not the original
// input.
type lexeme struct {
	surface  string
	reading  string   // katakana reading, empty if unknown
	baseForm string   // dictionary form, empty if unknown
	pos      []string // part-of-speech features, opaque pass-through
	start    int
	end      int
}

// sharedDict is the process-wide analyzer resource. The dictionary is
// large, so it is loaded once and shared read-only by every tokenizer
// created from the same dictionary kind, with a reference count deciding
// when the last holder releases it.
type sharedDict struct {
	tok  *kagome.Tokenizer
	refs int
}

var (
	sharedMu    sync.Mutex
	sharedDicts = map[string]*sharedDict{}
)

// acquireSharedDict returns the shared analyzer for kind, loading it on
// first use. Loading happens under the lock: concurrent first callers
// block until the dictionary is ready and it is never loaded twice.
func acquireSharedDict(kind string) (*sharedDict, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if d, ok := sharedDicts[kind]; ok {
		d.refs++
		return d, nil
	}

	if kind != "ipa" {
		return nil, fmt.Errorf("%w: unknown dictionary %q", ErrConfig, kind)
	}
	tok, err := kagome.New(ipa.Dict(), kagome.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: loading dictionary %q: %v", ErrConfig, kind, err)
	}

	d := &sharedDict{tok: tok, refs: 1}
	sharedDicts[kind] = d
	return d, nil
}

// releaseSharedDict drops one reference and unloads the dictionary when
// the last referencing tokenizer is closed.
func releaseSharedDict(kind string) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	d, ok := sharedDicts[kind]
	if !ok {
		return
	}
	d.refs--
	if d.refs <= 0 {
		delete(sharedDicts, kind)
	}
}

// analyzer adapts the kagome tokenizer to the bridge pipeline. It is
// read-only over the shared dictionary and safe for use from tokenizers
// on separate goroutines.
type analyzer struct {
	dictKind string
	shared   *sharedDict
	mode     kagome.TokenizeMode
}

func newAnalyzer(dictKind string, mode SegmentationMode) (*analyzer, error) {
	shared, err := acquireSharedDict(dictKind)
	if err != nil {
		return nil, err
	}
	return &analyzer{dictKind: dictKind, shared: shared, mode: mode.kagome()}, nil
}

func (a *analyzer) release() {
	releaseSharedDict(a.dictKind)
}

// analyze segments normalized text into lexemes. The analyzer covers
// the text without gaps or overlaps; index monotonicity is re-checked
// defensively because the offset mapper and the forward-only emission
// contract both depend on it.
func (a *analyzer) analyze(text string) ([]lexeme, error) {
	tokens := a.shared.tok.Analyze(text, a.mode)

	lexemes := make([]lexeme, 0, len(tokens))
	prevStart, prevEnd := -1, 0
	for _, t := range tokens {
		if t.Class == kagome.DUMMY {
			continue
		}
		if t.Start < prevStart || t.End < t.Start || t.Start < prevEnd {
			return nil, fmt.Errorf("%w: non-monotonic token range [%d,%d) after [%d,%d)",
				ErrAnalysis, t.Start, t.End, prevStart, prevEnd)
		}
		prevStart, prevEnd = t.Start, t.End

		lx := lexeme{
			surface: t.Surface,
			pos:     t.POS(),
			start:   t.Start,
			end:     t.End,
		}
		if r, ok := t.Reading(); ok && r != "*" {
			lx.reading = r
		}
		if b, ok := t.BaseForm(); ok && b != "*" {
			lx.baseForm = b
		}
		lexemes = append(lexemes, lx)
	}
	return lexemes, nil
}
