package tokenizer

import (
	"testing"
)

func benchTokenizer(b *testing.B, cfg Config) *Tokenizer {
	b.Helper()
	tok, err := New(cfg)
	if err != nil {
		b.Fatalf("Failed to create tokenizer: %v", err)
	}
	b.Cleanup(func() { tok.Close() })
	return tok
}

func drain(Token) error { return nil }

func BenchmarkTokenize_ShortCJK(b *testing.B) {
	tok := benchTokenizer(b, DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(TokenizeDocument, "日本語の全文検索", drain)
	}
}

func BenchmarkTokenize_MixedWidthSentence(b *testing.B) {
	tok := benchTokenizer(b, DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(TokenizeDocument, "Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。ユーザー辞書も利用可能です。", drain)
	}
}

func BenchmarkTokenize_QueryCached(b *testing.B) {
	tok := benchTokenizer(b, DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(TokenizeQuery, "全文検索", drain)
	}
}

func BenchmarkNormalize_NFKC(b *testing.B) {
	n := NewNormalizer(NormalizeNFKC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Normalize("Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。")
	}
}

func BenchmarkByteRange(b *testing.B) {
	n := NewNormalizer(NormalizeNFKC)
	nt, err := n.Normalize("Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nt.ByteRange(8, 11)
	}
}
