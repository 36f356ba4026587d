//go:build fts5

package fts5

/*
#include <stdlib.h>
#include <string.h>

extern int kagome_call_xtoken(void *cb, void *ctx, int tflags, const char *p, int n, int s, int e);
*/
import "C"

import (
	"log/slog"
	"unsafe"

	"github.com/kerem-kaynak/kagome-fts5/pkg/tokenizer"
)

// kagomeTokenizerCreate is the xCreate entry. Arguments select the
// config file, falling back to the environment. On success an opaque
// numeric handle is written to ppOut; on failure no handle exists and
// nothing leaks.
//
//export kagomeTokenizerCreate
func kagomeTokenizerCreate(azArg **C.char, nArg C.int, ppOut *unsafe.Pointer) (rc C.int) {
	defer boundaryRecover("create", &rc)

	var args []string
	if azArg != nil && nArg > 0 {
		for _, p := range unsafe.Slice(azArg, int(nArg)) {
			args = append(args, C.GoString(p))
		}
	}

	cfg, err := tokenizer.LoadConfigFromArgs(args)
	if err != nil {
		slog.Error("kagome fts5: loading configuration", "error", err)
		return C.int(statusFromError(err))
	}
	t, err := tokenizer.New(cfg)
	if err != nil {
		slog.Error("kagome fts5: creating tokenizer", "error", err)
		return C.int(statusFromError(err))
	}

	*ppOut = unsafe.Pointer(registerHandle(t)) //nolint:govet // opaque handle, not a Go pointer
	return StatusOK
}

// kagomeTokenizerDelete is the xDelete entry. Safe against double
// deletion: the handle is dropped exactly once.
//
//export kagomeTokenizerDelete
func kagomeTokenizerDelete(p unsafe.Pointer) {
	defer boundaryRecover("delete", nil)

	if t := dropHandle(uintptr(p)); t != nil {
		if err := t.Close(); err != nil {
			slog.Warn("kagome fts5: closing tokenizer", "error", err)
		}
	}
}

// kagomeTokenizerTokenize is the xTokenize entry. Token text crosses
// into C memory owned by a per-call buffer that the host may read only
// for the duration of each callback; the buffer is released on every
// exit path by a single deferred teardown.
//
//export kagomeTokenizerTokenize
func kagomeTokenizerTokenize(p, pCtx unsafe.Pointer, flags C.int, pText *C.char, nText C.int, cb unsafe.Pointer) (rc C.int) {
	defer boundaryRecover("tokenize", &rc)

	t := lookupHandle(uintptr(p))
	if t == nil {
		return StatusMisuse
	}
	if nText <= 0 {
		return StatusOK
	}
	text := C.GoStringN(pText, nText)

	buf := &tokenBuffer{}
	defer buf.free()

	err := t.Tokenize(tokenizer.Flags(flags), text, func(tok tokenizer.Token) error {
		cText, err := buf.put(tok.Text)
		if err != nil {
			return err
		}
		tflags := C.int(0)
		if tok.Colocated {
			tflags = TokenColocated
		}
		rc := C.kagome_call_xtoken(cb, pCtx, tflags, cText, C.int(len(tok.Text)),
			C.int(tok.Start), C.int(tok.End))
		if rc != StatusOK {
			return callbackError{code: int(rc)}
		}
		return nil
	})
	return C.int(statusFromError(err))
}

// tokenBuffer is the call-scoped arena for token text crossing the
// boundary. One C allocation is reused for every token of a tokenize
// call and freed once at the call's single teardown point.
type tokenBuffer struct {
	ptr unsafe.Pointer
	cap int
}

func (b *tokenBuffer) put(s string) (*C.char, error) {
	need := len(s) + 1
	if need > b.cap {
		b.free()
		b.cap = need * 2
		b.ptr = C.malloc(C.size_t(b.cap))
		if b.ptr == nil {
			b.cap = 0
			return nil, errNoMem
		}
	}
	dst := unsafe.Slice((*byte)(b.ptr), b.cap)
	copy(dst, s)
	dst[len(s)] = 0
	return (*C.char)(b.ptr), nil
}

func (b *tokenBuffer) free() {
	if b.ptr != nil {
		C.free(b.ptr)
		b.ptr = nil
		b.cap = 0
	}
}

// boundaryRecover converts a panic into an internal status instead of
// letting it unwind across the C ABI.
func boundaryRecover(op string, rc *C.int) {
	if r := recover(); r != nil {
		slog.Error("kagome fts5: panic at boundary", "op", op, "panic", r)
		if rc != nil {
			*rc = StatusInternal
		}
	}
}
