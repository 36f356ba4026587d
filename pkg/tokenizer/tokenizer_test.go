package tokenizer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"unicode/utf8"
)

// surfaceOnlyConfig disables every colocated variant so tests can
// assert the primary token sequence exactly.
func surfaceOnlyConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = "normal"
	cfg.EmitReadings = false
	cfg.EmitBaseForms = false
	cfg.KatakanaStem = true
	cfg.CacheSize = 0
	return cfg
}

func collect(t *testing.T, tok *Tokenizer, flags Flags, text string) []Token {
	t.Helper()
	var tokens []Token
	if err := tok.Tokenize(flags, text, func(tk Token) error {
		tokens = append(tokens, tk)
		return nil
	}); err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", text, err)
	}
	return tokens
}

func TestTokenize_OriginalByteOffsets(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	input := "Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。ユーザー辞書も利用可能です。"
	got := collect(t, tok, TokenizeDocument, input)

	want := []Token{
		{Text: "Lindera", Start: 0, End: 21, Position: 0},
		{Text: "形態素", Start: 24, End: 33, Position: 1},
		{Text: "解析", Start: 33, End: 39, Position: 2},
		{Text: "エンジン", Start: 39, End: 54, Position: 3},
		{Text: "ユーザ", Start: 63, End: 75, Position: 4},
		{Text: "辞書", Start: 75, End: 81, Position: 5},
		{Text: "利用", Start: 84, End: 90, Position: 6},
		{Text: "可能", Start: 90, End: 96, Position: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", input, got, want)
	}
}

func TestTokenize_OffsetRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	inputs := []string{
		"日本語の全文検索",
		"Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。",
		"SQLiteで全文検索する",
		"ﾃﾞｰﾀﾍﾞｰｽ",
	}
	for _, input := range inputs {
		for _, tk := range collect(t, tok, TokenizeDocument, input) {
			if tk.Start < 0 || tk.End > len(input) || tk.Start >= tk.End {
				t.Errorf("token %q has range [%d,%d) outside input of %d bytes",
					tk.Text, tk.Start, tk.End, len(input))
				continue
			}
			slice := input[tk.Start:tk.End]
			if !utf8.ValidString(slice) {
				t.Errorf("token %q maps to byte slice %q that splits a character", tk.Text, slice)
			}
		}
	}
}

func TestTokenize_MonotonicEmission(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	input := "ユーザー辞書も利用可能です。形態素解析は便利。"
	tokens := collect(t, tok, TokenizeDocument, input)
	if len(tokens) == 0 {
		t.Fatal("expected tokens")
	}

	prevEnd := 0
	prevPos := -1
	for _, tk := range tokens {
		if tk.Colocated {
			continue
		}
		if tk.Start < prevEnd {
			t.Errorf("non-colocated token %q starts at %d before previous end %d", tk.Text, tk.Start, prevEnd)
		}
		if tk.Position != prevPos+1 {
			t.Errorf("token %q has position %d, want %d", tk.Text, tk.Position, prevPos+1)
		}
		prevEnd = tk.End
		prevPos = tk.Position
	}
}

func TestTokenize_ColocationInvariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	tokens := collect(t, tok, TokenizeDocument, "形態素解析")

	primaries := map[int]Token{}
	colocated := 0
	for _, tk := range tokens {
		if !tk.Colocated {
			primaries[tk.Position] = tk
		}
	}
	for _, tk := range tokens {
		if !tk.Colocated {
			continue
		}
		colocated++
		p, ok := primaries[tk.Position]
		if !ok {
			t.Errorf("colocated token %q at position %d has no primary", tk.Text, tk.Position)
			continue
		}
		if tk.Start != p.Start || tk.End != p.End {
			t.Errorf("colocated token %q range [%d,%d) differs from primary %q [%d,%d)",
				tk.Text, tk.Start, tk.End, p.Text, p.Start, p.End)
		}
	}
	if colocated == 0 {
		t.Error("expected at least one colocated reading token for 形態素解析")
	}
}

func TestTokenize_PrefixSuppressesColocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	for _, tk := range collect(t, tok, TokenizeQuery|TokenizePrefix, "形態素解析") {
		if tk.Colocated {
			t.Errorf("prefix query emitted colocated token %q", tk.Text)
		}
	}
}

func TestTokenize_Idempotence(t *testing.T) {
	cfg := DefaultConfig()
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	input := "日本語の全文検索エンジン"
	first := collect(t, tok, TokenizeQuery, input)
	second := collect(t, tok, TokenizeQuery, input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated tokenization differs: %v vs %v", first, second)
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	tokens := collect(t, tok, TokenizeDocument, "")
	if len(tokens) != 0 {
		t.Errorf("empty input emitted %d tokens, want 0", len(tokens))
	}
}

func TestTokenize_InvalidUTF8(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	calls := 0
	err = tok.Tokenize(TokenizeDocument, "\xc3\x28", func(Token) error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Tokenize(invalid) error = %v, want ErrInvalidUTF8", err)
	}
	if calls != 0 {
		t.Errorf("invalid input produced %d callbacks, want 0", calls)
	}
}

func TestTokenize_EarlyStop(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	stop := errors.New("stop")
	calls := 0
	err = tok.Tokenize(TokenizeDocument, "形態素解析は便利です", func(Token) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Tokenize error = %v, want the callback's stop error", err)
	}
	if calls != 1 {
		t.Errorf("callback invoked %d times after stop, want 1", calls)
	}
}

func TestTokenize_AfterClose(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tok.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tok.Close(); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}

	err = tok.Tokenize(TokenizeDocument, "日本語", func(Token) error { return nil })
	if !errors.Is(err, ErrMisuse) {
		t.Errorf("Tokenize after Close error = %v, want ErrMisuse", err)
	}
}

func TestTokenize_Reentrant(t *testing.T) {
	tok, err := New(surfaceOnlyConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	var inner error
	err = tok.Tokenize(TokenizeDocument, "日本語", func(Token) error {
		inner = tok.Tokenize(TokenizeDocument, "再入", func(Token) error { return nil })
		return inner
	})
	if !errors.Is(inner, ErrMisuse) {
		t.Errorf("reentrant Tokenize error = %v, want ErrMisuse", inner)
	}
	if !errors.Is(err, ErrMisuse) {
		t.Errorf("outer Tokenize error = %v, want the propagated ErrMisuse", err)
	}
}

func TestTokenize_ConcurrentContexts(t *testing.T) {
	cfg := surfaceOnlyConfig()

	inputs := []string{
		"Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。",
		"ユーザー辞書も利用可能です。",
	}

	// Sequential reference results.
	want := make([][]Token, len(inputs))
	for i, input := range inputs {
		tok, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		want[i] = collect(t, tok, TokenizeDocument, input)
		tok.Close()
	}

	var wg sync.WaitGroup
	got := make([][]Token, len(inputs))
	errs := make([]error, len(inputs))
	for i, input := range inputs {
		i, input := i, input
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := New(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			defer tok.Close()
			for n := 0; n < 10; n++ {
				var tokens []Token
				if err := tok.Tokenize(TokenizeDocument, input, func(tk Token) error {
					tokens = append(tokens, tk)
					return nil
				}); err != nil {
					errs[i] = err
					return
				}
				got[i] = tokens
			}
		}()
	}
	wg.Wait()

	for i := range inputs {
		if errs[i] != nil {
			t.Fatalf("context %d failed: %v", i, errs[i])
		}
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("context %d tokens = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenize_UserDictionarySynonyms(t *testing.T) {
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "userdict.txt")
	if err := os.WriteFile(dictPath, []byte("東京\tとうきょう,tokyo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := surfaceOnlyConfig()
	cfg.UserDictionary = dictPath
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	tokens := collect(t, tok, TokenizeDocument, "東京")
	var texts []string
	for _, tk := range tokens {
		if tk.Colocated {
			texts = append(texts, tk.Text)
		}
	}
	wantSyns := []string{"とうきょう", "tokyo"}
	if !reflect.DeepEqual(texts, wantSyns) {
		t.Errorf("colocated synonyms = %v, want %v", texts, wantSyns)
	}
}

func TestTokenize_LatinStemColocation(t *testing.T) {
	cfg := surfaceOnlyConfig()
	cfg.StemLanguage = "english"
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tok.Close()

	tokens := collect(t, tok, TokenizeDocument, "Ｌｉｎｄｅｒａ")
	if len(tokens) < 2 {
		t.Fatalf("tokens = %v, want primary plus stem", tokens)
	}
	if tokens[0].Text != "Lindera" || tokens[0].Colocated {
		t.Errorf("primary = %+v, want Lindera", tokens[0])
	}
	if tokens[1].Text != "lindera" || !tokens[1].Colocated {
		t.Errorf("stem = %+v, want colocated lindera", tokens[1])
	}
	if tokens[1].Start != tokens[0].Start || tokens[1].End != tokens[0].End {
		t.Errorf("stem range [%d,%d) differs from primary [%d,%d)",
			tokens[1].Start, tokens[1].End, tokens[0].Start, tokens[0].End)
	}
}
