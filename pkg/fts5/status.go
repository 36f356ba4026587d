// Package fts5 exposes the tokenizer bridge to SQLite through the FTS5
// custom tokenizer C ABI. The cgo boundary lives behind the "fts5"
// build tag; this file holds the tag-free pieces (status mapping and
// the handle table) so they stay testable without a C toolchain.
package fts5

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kerem-kaynak/kagome-fts5/pkg/tokenizer"
)

// TokenizerName is the name registered with FTS5, usable as
// tokenize='kagome' in CREATE VIRTUAL TABLE.
const TokenizerName = "kagome"

// SQLite status codes crossing the boundary. No Go error ever unwinds
// past the ABI; everything becomes one of these.
const (
	StatusOK       = 0
	StatusError    = 1
	StatusInternal = 2
	StatusNoMem    = 7
	StatusMisuse   = 21
)

// TokenColocated is the FTS5 token flag marking a colocated token.
const TokenColocated = 0x0001

// errNoMem reports an allocation failure for a boundary buffer. The
// current call aborts cleanly; tokens already delivered stand.
var errNoMem = errors.New("out of memory for boundary buffer")

// callbackError carries a non-zero status returned by the host's token
// callback back through the pipeline as the Stop signal.
type callbackError struct {
	code int
}

func (e callbackError) Error() string {
	return fmt.Sprintf("token callback returned status %d", e.code)
}

// statusFromError converts a pipeline error to the status code reported
// to SQLite. Invalid UTF-8 maps to StatusOK with zero tokens emitted:
// failing the statement here would leave the table unreadable, so the
// row simply indexes no tokens.
func statusFromError(err error) int {
	if err == nil {
		return StatusOK
	}

	var cb callbackError
	switch {
	case errors.As(err, &cb):
		return cb.code
	case errors.Is(err, tokenizer.ErrInvalidUTF8):
		return StatusOK
	case errors.Is(err, tokenizer.ErrMisuse):
		return StatusMisuse
	case errors.Is(err, errNoMem):
		return StatusNoMem
	case errors.Is(err, tokenizer.ErrConfig),
		errors.Is(err, tokenizer.ErrAnalysis):
		return StatusInternal
	default:
		return StatusError
	}
}

// The handle table maps opaque numeric handles to tokenizer instances
// so no Go pointer ever crosses the C boundary. Each handle is created
// once at xCreate and released exactly once at xDelete.
var (
	handlesMu  sync.Mutex
	handles    = map[uintptr]*tokenizer.Tokenizer{}
	nextHandle uintptr
)

func registerHandle(t *tokenizer.Tokenizer) uintptr {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	nextHandle++
	handles[nextHandle] = t
	return nextHandle
}

func lookupHandle(h uintptr) *tokenizer.Tokenizer {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	return handles[h]
}

// dropHandle removes and returns the tokenizer for h, or nil if the
// handle is unknown or already dropped (double-delete guard).
func dropHandle(h uintptr) *tokenizer.Tokenizer {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	t := handles[h]
	delete(handles, h)
	return t
}
