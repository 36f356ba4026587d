// Package tokenizer segments CJK text into search tokens for SQLite
// FTS5 using the Kagome morphological analyzer. Input is canonicalized
// (NFKC width folding and friends) before analysis, yet every emitted
// token carries byte offsets into the original, unmodified input so the
// host can highlight and snippet correctly.
package tokenizer

import (
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrMisuse is returned when the host violates the lifecycle contract,
// e.g. tokenizing after Close or reentrantly. It is fatal for the
// affected tokenizer only.
var ErrMisuse = errors.New("tokenizer lifecycle misuse")

// Flags are the host's tokenize-call flags. Values match the FTS5
// FTS5_TOKENIZE_* constants and pass through opaquely; only minor
// behavior keys off them and never the offset mapping.
type Flags int

const (
	// TokenizeQuery marks tokenization of a MATCH query string.
	TokenizeQuery Flags = 0x0001
	// TokenizePrefix marks a prefix query token; colocated variants
	// are suppressed so the prefix matches primaries only.
	TokenizePrefix Flags = 0x0002
	// TokenizeDocument marks tokenization of column content.
	TokenizeDocument Flags = 0x0004
	// TokenizeAux marks tokenization for an auxiliary function.
	TokenizeAux Flags = 0x0008
)

// YieldFunc receives tokens one at a time during a Tokenize call.
// Returning a non-nil error stops emission immediately; Tokenize
// returns that error unchanged.
type YieldFunc func(Token) error

// tokenizer states. Exactly one tokenize call is in flight per
// Tokenizer by host contract; the state guard makes violations fail
// with ErrMisuse instead of corrupting offsets.
const (
	stateReady int32 = iota
	stateTokenizing
	stateClosed
)

// maxCacheableLen bounds the input size admitted to the query cache.
const maxCacheableLen = 1 << 10

// Tokenizer drives the normalize → analyze → map → emit pipeline for
// one FTS5 tokenizer instance. Create one per host tokenizer handle;
// instances share the process-wide dictionary but no mutable state.
type Tokenizer struct {
	cfg      Config
	norm     *Normalizer
	analyzer *analyzer
	emit     emitter
	stopTags []string
	cache    *lru.Cache[string, []lexeme]
	state    atomic.Int32
}

// New creates a tokenizer from a validated configuration, attaching to
// the shared dictionary resource. Configuration problems fail here with
// ErrConfig; nothing is leaked on failure.
func New(cfg Config) (*Tokenizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	normMode, err := ParseNormalizeMode(cfg.Normalize)
	if err != nil {
		return nil, err
	}
	segMode, err := ParseSegmentationMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	var userDict *UserDictionary
	if cfg.UserDictionary != "" {
		userDict, err = NewUserDictionary(cfg.UserDictionary)
		if err != nil {
			return nil, err
		}
	}

	an, err := newAnalyzer(cfg.Dictionary, segMode)
	if err != nil {
		if userDict != nil {
			userDict.Close()
		}
		return nil, err
	}

	t := &Tokenizer{
		cfg:      cfg,
		norm:     NewNormalizer(normMode),
		analyzer: an,
		stopTags: cfg.StopTags,
		emit: emitter{
			readings:  cfg.EmitReadings,
			baseForms: cfg.EmitBaseForms,
			stemLang:  cfg.StemLanguage,
			kataStem:  cfg.KatakanaStem,
			userDict:  userDict,
		},
	}
	if cfg.CacheSize > 0 {
		t.cache, _ = lru.New[string, []lexeme](cfg.CacheSize)
	}
	return t, nil
}

// Tokenize runs the pipeline over text and yields tokens in strictly
// increasing original-byte order, colocated variants immediately after
// their primary. It is synchronous and single-pass: the first yield
// error aborts remaining emission and is returned as-is.
func (t *Tokenizer) Tokenize(flags Flags, text string, yield YieldFunc) error {
	if !t.state.CompareAndSwap(stateReady, stateTokenizing) {
		switch t.state.Load() {
		case stateClosed:
			return fmt.Errorf("%w: tokenize after close", ErrMisuse)
		default:
			return fmt.Errorf("%w: reentrant tokenize", ErrMisuse)
		}
	}
	defer t.state.CompareAndSwap(stateTokenizing, stateReady)

	if text == "" {
		return nil
	}

	nt, err := t.norm.Normalize(text)
	if err != nil {
		return err
	}

	lexemes, err := t.analyzeCached(flags, nt.Text)
	if err != nil {
		return err
	}

	colocate := flags&TokenizePrefix == 0
	scratch := make([]Token, 0, 4)
	position := 0
	for _, lx := range lexemes {
		if matchesStopTags(t.stopTags, lx.pos) {
			continue
		}
		start, end := nt.ByteRange(lx.start, lx.end)

		scratch = t.emit.expand(scratch[:0], lx, start, end, position, colocate)
		for _, tok := range scratch {
			if err := yield(tok); err != nil {
				return err
			}
		}
		position++
	}
	return nil
}

// analyzeCached consults the query cache before running the analyzer.
// Only query-flagged calls are cached: queries repeat, documents do not.
func (t *Tokenizer) analyzeCached(flags Flags, text string) ([]lexeme, error) {
	cacheable := t.cache != nil && flags&TokenizeQuery != 0 && len(text) <= maxCacheableLen
	if cacheable {
		if lexemes, ok := t.cache.Get(text); ok {
			return lexemes, nil
		}
	}

	lexemes, err := t.analyzer.analyze(text)
	if err != nil {
		return nil, err
	}
	if cacheable {
		t.cache.Add(text, lexemes)
	}
	return lexemes, nil
}

// Close releases the dictionary reference and the user dictionary.
// It is idempotent; tokenizing after Close fails with ErrMisuse.
func (t *Tokenizer) Close() error {
	prev := t.state.Swap(stateClosed)
	if prev == stateClosed {
		return nil
	}

	t.analyzer.release()
	if t.emit.userDict != nil {
		return t.emit.userDict.Close()
	}
	return nil
}

// Config returns the configuration the tokenizer was created with.
func (t *Tokenizer) Config() Config { return t.cfg }
