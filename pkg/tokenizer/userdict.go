package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/vellum"
)

// UserDictionary maps token surfaces to synonym lists emitted as
// colocated tokens. Entries live in a tab-separated text file
// ("surface<TAB>syn1,syn2") which is compiled into an FST for lookups;
// the in-memory entry map stays the source of truth for modifications.
type UserDictionary struct {
	fst      *vellum.FST
	entries  map[string][]string
	synonyms [][]string // FST values index into this, ordered by surface
	fstPath  string
	txtPath  string
	mu       sync.RWMutex
}

// NewUserDictionary loads a synonym dictionary from a text file,
// building the FST next to it if none exists yet.
func NewUserDictionary(txtPath string) (*UserDictionary, error) {
	fstPath := strings.TrimSuffix(txtPath, ".txt") + ".fst"

	d := &UserDictionary{
		entries: make(map[string][]string),
		fstPath: fstPath,
		txtPath: txtPath,
	}

	if err := d.loadTextFile(); err != nil {
		return nil, fmt.Errorf("%w: user dictionary: %v", ErrConfig, err)
	}
	if err := d.rebuildLocked(); err != nil {
		return nil, fmt.Errorf("%w: user dictionary: %v", ErrConfig, err)
	}
	return d, nil
}

func (d *UserDictionary) loadTextFile() error {
	file, err := os.Open(d.txtPath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		surface, rest, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		var syns []string
		for _, s := range strings.Split(rest, ",") {
			if s = strings.TrimSpace(s); s != "" {
				syns = append(syns, s)
			}
		}
		if len(syns) > 0 {
			d.entries[strings.TrimSpace(surface)] = syns
		}
	}
	return scanner.Err()
}

// Lookup returns the synonyms recorded for a surface, or nil.
func (d *UserDictionary) Lookup(surface string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.fst == nil {
		return nil
	}
	idx, exists, err := d.fst.Get([]byte(surface))
	if err != nil || !exists || int(idx) >= len(d.synonyms) {
		return nil
	}
	return d.synonyms[idx]
}

// Contains reports whether a surface has a dictionary entry.
func (d *UserDictionary) Contains(surface string) bool {
	return d.Lookup(surface) != nil
}

// Add records a surface with its synonyms and rebuilds the FST.
// The change is persisted to the source text file.
func (d *UserDictionary) Add(surface string, synonyms []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[surface] = synonyms
	return d.rebuildLocked()
}

// Remove deletes a surface entry and rebuilds the FST.
func (d *UserDictionary) Remove(surface string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.entries, surface)
	return d.rebuildLocked()
}

// EntryCount returns the number of surfaces in the dictionary.
func (d *UserDictionary) EntryCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Close releases the FST.
func (d *UserDictionary) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fst != nil {
		err := d.fst.Close()
		d.fst = nil
		return err
	}
	return nil
}

// rebuildLocked rebuilds the FST from the entry map and persists both
// files. Caller must hold the write lock.
func (d *UserDictionary) rebuildLocked() error {
	if d.fst != nil {
		d.fst.Close()
		d.fst = nil
	}

	surfaces := make([]string, 0, len(d.entries))
	for s := range d.entries {
		surfaces = append(surfaces, s)
	}
	sort.Strings(surfaces)

	fstFile, err := os.Create(d.fstPath)
	if err != nil {
		return err
	}

	builder, err := vellum.New(fstFile, nil)
	if err != nil {
		fstFile.Close()
		return err
	}

	d.synonyms = make([][]string, 0, len(surfaces))
	for i, s := range surfaces {
		if err := builder.Insert([]byte(s), uint64(i)); err != nil {
			builder.Close()
			fstFile.Close()
			return err
		}
		d.synonyms = append(d.synonyms, d.entries[s])
	}

	if err := builder.Close(); err != nil {
		fstFile.Close()
		return err
	}
	fstFile.Close()

	fst, err := vellum.Open(d.fstPath)
	if err != nil {
		return err
	}
	d.fst = fst

	return d.saveTextFile(surfaces)
}

func (d *UserDictionary) saveTextFile(surfaces []string) error {
	file, err := os.Create(d.txtPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, s := range surfaces {
		line := s + "\t" + strings.Join(d.entries[s], ",") + "\n"
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}
