package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kerem-kaynak/kagome-fts5/pkg/tokenizer"
)

const (
	iterations = 10000
	warmup     = 100
	boxWidth   = 62

	// ANSI color codes
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorGreen = "\033[32m"
	colorDim   = "\033[2m"
)

var line = strings.Repeat("─", boxWidth)

func main() {
	cfg := tokenizer.DefaultConfig()
	if path := os.Getenv(tokenizer.ConfigPathEnv); path != "" {
		loaded, err := tokenizer.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	fmt.Print("Loading dictionary... ")
	start := time.Now()
	tok, err := tokenizer.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer tok.Close()
	fmt.Printf("done (%v)\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Iterations: %d (warmup: %d)\n", iterations, warmup)
	fmt.Println()

	drain := func(tokenizer.Token) error { return nil }

	shortCJK := "日本語の全文検索"
	mixedWidth := "Ｌｉｎｄｅｒａは形態素解析ｴﾝｼﾞﾝです。"
	longSentence := "ユーザー辞書も利用可能です。形態素解析エンジンはSQLiteの全文検索と組み合わせて使えます。"

	printHeader("DOCUMENT TOKENIZATION THROUGHPUT")
	bench("Short CJK phrase", func() {
		tok.Tokenize(tokenizer.TokenizeDocument, shortCJK, drain)
	})
	bench("Mixed-width sentence", func() {
		tok.Tokenize(tokenizer.TokenizeDocument, mixedWidth, drain)
	})
	bench("Long sentence", func() {
		tok.Tokenize(tokenizer.TokenizeDocument, longSentence, drain)
	})
	printFooter()
	fmt.Println()

	printHeader("QUERY TOKENIZATION (CACHED)")
	bench("Repeated query", func() {
		tok.Tokenize(tokenizer.TokenizeQuery, "全文検索", drain)
	})
	printFooter()
	fmt.Println()

	printHeader("COMPONENT BREAKDOWN")
	norm := tokenizer.NewNormalizer(tokenizer.NormalizeNFKC)
	bench("Normalizer (NFKC)", func() {
		norm.Normalize(mixedWidth)
	})
	nt, _ := norm.Normalize(mixedWidth)
	bench("Offset mapping", func() {
		nt.ByteRange(8, 11)
	})
	printFooter()
}

func bench(name string, fn func()) {
	for i := 0; i < warmup; i++ {
		fn()
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		fn()
	}
	elapsed := time.Since(start)
	perOp := elapsed / iterations

	fmt.Printf("│ %s%-28s%s %s%12v/op%s %s%14.0f ops/s%s │\n",
		colorCyan, name, colorReset,
		colorGreen, perOp, colorReset,
		colorDim, float64(time.Second)/float64(perOp), colorReset)
}

func printHeader(title string) {
	fmt.Printf("┌%s┐\n", line)
	fmt.Printf("│ %-60s │\n", title)
	fmt.Printf("├%s┤\n", line)
}

func printFooter() {
	fmt.Printf("└%s┘\n", line)
}
