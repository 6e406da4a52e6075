package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vocamail/internal/vocab"
)

// WriteFile writes raw content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SeedLevel writes one entry per word into the level pool under dir. Each
// entry gets a meaning and phrase derived from the word.
func SeedLevel(t testing.TB, dir string, level int, words ...string) []vocab.WordEntry {
	t.Helper()

	entries := make([]vocab.WordEntry, 0, len(words))
	for _, w := range words {
		entries = append(entries, vocab.WordEntry{
			Word:    w,
			Meaning: "meaning of " + w,
			Phrase:  "a phrase with " + w,
		})
	}
	if err := vocab.NewStore(dir).SaveLevel(level, entries); err != nil {
		t.Fatalf("seed level %d: %v", level, err)
	}
	return entries
}
