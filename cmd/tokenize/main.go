package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kerem-kaynak/kagome-fts5/pkg/tokenizer"
)

func loadTokenizer() (*tokenizer.Tokenizer, error) {
	if path := os.Getenv(tokenizer.ConfigPathEnv); path != "" {
		cfg, err := tokenizer.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		return tokenizer.New(cfg)
	}
	return tokenizer.New(tokenizer.DefaultConfig())
}

func tokenize(tok *tokenizer.Tokenizer, text string) ([]tokenizer.Token, error) {
	var tokens []tokenizer.Token
	err := tok.Tokenize(tokenizer.TokenizeDocument, text, func(t tokenizer.Token) error {
		tokens = append(tokens, t)
		return nil
	})
	return tokens, err
}

func printTokens(tok *tokenizer.Tokenizer, text string) {
	tokens, err := tokenize(tok, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error tokenizing: %v\n", err)
		return
	}
	output, _ := json.Marshal(tokens)
	fmt.Println(string(output))
}

func main() {
	tok, err := loadTokenizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tokenizer: %v\n", err)
		os.Exit(1)
	}
	defer tok.Close()

	// If text provided as arguments, tokenize and exit
	if len(os.Args) > 1 {
		printTokens(tok, strings.Join(os.Args[1:], " "))
		return
	}

	// Interactive mode
	fmt.Println("Kagome FTS5 tokenizer (interactive mode)")
	fmt.Printf("Set %s to use a config file.\n", tokenizer.ConfigPathEnv)
	fmt.Println("Type a sentence, press Enter to tokenize. Ctrl+C to exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if text == "" {
			continue
		}
		printTokens(tok, text)
		fmt.Println()
	}
}
