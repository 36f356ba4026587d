//go:build fts5

package fts5

/*
#cgo LDFLAGS: -lsqlite3

#include <stdlib.h>
#include <string.h>
#include "sqlite3.h"
#ifdef C_SHARED_BUILD
#include "sqlite3ext.h"
SQLITE_EXTENSION_INIT1
#endif

extern int kagomeTokenizerCreate(char **azArg, int nArg, void **ppOut);
extern void kagomeTokenizerDelete(void *p);
extern int kagomeTokenizerTokenize(void *p, void *pCtx, int flags, char *pText, int nText, void *xToken);

typedef int (*kagome_xtoken)(void *, int, const char *, int, int, int);

// Invokes the host's per-token callback from Go. Defined here once and
// declared extern where the exports live.
int kagome_call_xtoken(void *cb, void *ctx, int tflags, const char *p, int n, int s, int e) {
	return ((kagome_xtoken)cb)(ctx, tflags, p, n, s, e);
}

static int kagome_create(void *pCtx, const char **azArg, int nArg, Fts5Tokenizer **ppOut) {
	(void)pCtx;
	return kagomeTokenizerCreate((char **)azArg, nArg, (void **)ppOut);
}

static void kagome_delete(Fts5Tokenizer *pTok) {
	kagomeTokenizerDelete((void *)pTok);
}

static int kagome_tokenize(Fts5Tokenizer *pTok, void *pCtx, int flags, const char *pText,
	int nText, int (*xToken)(void *, int, const char *, int, int, int)) {
	return kagomeTokenizerTokenize((void *)pTok, pCtx, flags, (char *)pText, nText, (void *)xToken);
}

// Extension entry point: .load ./kagome_fts5 sqlite3_kagomefts5_init
// Fetches the fts5_api pointer the documented way and registers the
// tokenizer under the name "kagome".
int sqlite3_kagomefts5_init(sqlite3 *db, char **pzErrMsg, const sqlite3_api_routines *pApi) {
#ifdef C_SHARED_BUILD
	SQLITE_EXTENSION_INIT2(pApi);
#else
	(void)pApi;
#endif
	(void)pzErrMsg;

	fts5_api *pFtsApi = 0;
	sqlite3_stmt *pStmt = 0;
	int rc = sqlite3_prepare_v2(db, "SELECT fts5(?1)", -1, &pStmt, 0);
	if (rc != SQLITE_OK) {
		return rc;
	}
	sqlite3_bind_pointer(pStmt, 1, (void *)&pFtsApi, "fts5_api_ptr", 0);
	sqlite3_step(pStmt);
	rc = sqlite3_finalize(pStmt);
	if (rc != SQLITE_OK) {
		return rc;
	}
	if (pFtsApi == 0 || pFtsApi->iVersion < 2) {
		return SQLITE_MISUSE;
	}

	static fts5_tokenizer tok = {kagome_create, kagome_delete, kagome_tokenize};
	return pFtsApi->xCreateTokenizer(pFtsApi, "kagome", 0, &tok, 0);
}

#ifndef C_SHARED_BUILD
// In-process builds register through the auto-extension hook so every
// subsequently opened connection gets the tokenizer.
static void __attribute__((constructor)) kagome_auto_register(void) {
	sqlite3_auto_extension((void (*)(void))sqlite3_kagomefts5_init);
}
#endif
*/
import "C"
