package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kerem-kaynak/kagome-fts5/pkg/tokenizer"
)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	dictPath := os.Args[1]
	command := os.Args[2]

	dict, err := tokenizer.NewUserDictionary(dictPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading user dictionary: %v\n", err)
		os.Exit(1)
	}
	defer dict.Close()

	switch command {
	case "add":
		if len(os.Args) < 5 {
			fmt.Println("Error: add requires a surface and a comma-separated synonym list")
			os.Exit(1)
		}
		surface := os.Args[3]
		synonyms := splitSynonyms(os.Args[4])
		if len(synonyms) == 0 {
			fmt.Println("Error: empty synonym list")
			os.Exit(1)
		}
		if err := dict.Add(surface, synonyms); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding '%s': %v\n", surface, err)
			os.Exit(1)
		}
		fmt.Printf("Added: %s -> %s\n", surface, strings.Join(synonyms, ", "))
		fmt.Printf("Total entries: %d\n", dict.EntryCount())

	case "remove":
		if len(os.Args) < 4 {
			fmt.Println("Error: remove requires a surface")
			os.Exit(1)
		}
		for _, surface := range os.Args[3:] {
			if err := dict.Remove(surface); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", surface, err)
				os.Exit(1)
			}
			fmt.Printf("Removed: %s\n", surface)
		}
		fmt.Printf("Total entries: %d\n", dict.EntryCount())

	case "lookup":
		if len(os.Args) < 4 {
			fmt.Println("Error: lookup requires a surface")
			os.Exit(1)
		}
		surface := os.Args[3]
		synonyms := dict.Lookup(surface)
		if synonyms == nil {
			fmt.Printf("'%s' has no entry\n", surface)
			os.Exit(1)
		}
		fmt.Printf("%s -> %s\n", surface, strings.Join(synonyms, ", "))

	case "count":
		fmt.Printf("Entries: %d\n", dict.EntryCount())

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func splitSynonyms(s string) []string {
	var out []string
	for _, syn := range strings.Split(s, ",") {
		if syn = strings.TrimSpace(syn); syn != "" {
			out = append(out, syn)
		}
	}
	return out
}

func printUsage() {
	fmt.Println("Usage: userdict <dictionary_path> <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add <surface> <syn1,syn2,...>   Add or replace an entry")
	fmt.Println("  remove <surface>...             Remove entries")
	fmt.Println("  lookup <surface>                Show an entry's synonyms")
	fmt.Println("  count                           Show the number of entries")
}
