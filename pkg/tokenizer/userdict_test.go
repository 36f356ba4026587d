package tokenizer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeUserDict(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "userdict.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUserDictionary_Lookup(t *testing.T) {
	path := writeUserDict(t, "# comment line\n東京\tとうきょう,tokyo\n大阪\tおおさか\n\n")

	d, err := NewUserDictionary(path)
	if err != nil {
		t.Fatalf("NewUserDictionary: %v", err)
	}
	defer d.Close()

	if d.EntryCount() != 2 {
		t.Errorf("EntryCount = %d, want 2", d.EntryCount())
	}

	tests := []struct {
		surface string
		want    []string
	}{
		{"東京", []string{"とうきょう", "tokyo"}},
		{"大阪", []string{"おおさか"}},
		{"京都", nil},
	}
	for _, tt := range tests {
		if got := d.Lookup(tt.surface); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lookup(%q) = %v, want %v", tt.surface, got, tt.want)
		}
	}
}

func TestUserDictionary_AddRemove(t *testing.T) {
	path := writeUserDict(t, "東京\tとうきょう\n")

	d, err := NewUserDictionary(path)
	if err != nil {
		t.Fatalf("NewUserDictionary: %v", err)
	}
	defer d.Close()

	if err := d.Add("名古屋", []string{"なごや"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := d.Lookup("名古屋"); !reflect.DeepEqual(got, []string{"なごや"}) {
		t.Errorf("Lookup after Add = %v, want [なごや]", got)
	}

	if err := d.Remove("東京"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := d.Lookup("東京"); got != nil {
		t.Errorf("Lookup after Remove = %v, want nil", got)
	}
}

func TestUserDictionary_Persistence(t *testing.T) {
	path := writeUserDict(t, "東京\tとうきょう\n")

	d, err := NewUserDictionary(path)
	if err != nil {
		t.Fatalf("NewUserDictionary: %v", err)
	}
	if err := d.Add("横浜", []string{"よこはま"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewUserDictionary(path)
	if err != nil {
		t.Fatalf("NewUserDictionary (reopen): %v", err)
	}
	defer reopened.Close()

	if got := reopened.Lookup("横浜"); !reflect.DeepEqual(got, []string{"よこはま"}) {
		t.Errorf("Lookup after reopen = %v, want [よこはま]", got)
	}
}

func TestUserDictionary_MissingFile(t *testing.T) {
	_, err := NewUserDictionary(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("NewUserDictionary(missing) = nil error, want ErrConfig")
	}
}
