package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vocamail/internal/testsupport"
	"vocamail/internal/vocab"
)

func TestWordsImportListAndStats(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.dataDir, vocab.VocabularyFile),
		"apple | fruit | an apple a day | food\n"+
			"run | move fast | run home | verbs\n"+
			"pear | fruit | a ripe pear | food\n"+
			" | orphan meaning with no word\n")

	out := env.mustRun(t, "words", "import", "--level", "2")
	requireContains(t, out, "Imported 3 of 3 words into level 2")

	out = env.mustRun(t, "words", "import", "--level", "2")
	requireContains(t, out, "Imported 0 of 3 words into level 2")
	requireContains(t, out, "Previous pool saved to")
	if _, err := os.Stat(filepath.Join(env.dataDir, "level2.json.bak")); err != nil {
		t.Fatalf("expected pool backup: %v", err)
	}

	var entries []vocab.WordEntry
	decodeJSON(t, env.mustRun(t, "--json", "words", "list", "--level", "2", "--category", "food"), &entries)
	if len(entries) != 2 || entries[0].Word != "apple" || entries[1].Word != "pear" {
		t.Fatalf("unexpected food entries %+v", entries)
	}

	var stats []vocab.CategoryStat
	decodeJSON(t, env.mustRun(t, "--json", "words", "stats", "--level", "2"), &stats)
	if len(stats) != 2 || stats[0] != (vocab.CategoryStat{Category: "food", Count: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out = env.mustRun(t, "words", "list", "--learned")
	requireContains(t, out, "No words in learned")
}

func TestWordsStageRefusesDuplicatesWithoutForce(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.SeedLevel(t, env.dataDir, 1, "apple", "banana")

	out := env.mustRun(t, "words", "stage", "--level", "1", "apple", "banana")
	requireContains(t, out, "Staged 2 word(s) in mailed.json")

	_, err := env.run(t, "words", "stage", "--level", "1", "Apple")
	if err == nil || !strings.Contains(err.Error(), "already staged") {
		t.Fatalf("expected already staged error, got %v", err)
	}
	env.mustRun(t, "words", "stage", "--level", "1", "--force", "apple")

	records, err := vocab.NewStore(env.dataDir).Mailed().Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 staged records, got %d", len(records))
	}

	if _, err := env.run(t, "words", "stage", "--level", "1", "cherry"); err == nil {
		t.Fatal("expected error staging a word missing from the pool")
	}
}

func TestWordsLearnMoveBackAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.SeedLevel(t, env.dataDir, 3, "apple", "banana", "cherry")

	out := env.mustRun(t, "words", "learn", "--level", "3", "apple")
	requireContains(t, out, `Marked "apple" as learned (level3)`)

	out = env.mustRun(t, "words", "move-back", "apple")
	requireContains(t, out, `Moved "apple" back to vocabulary.txt`)
	text, err := os.ReadFile(filepath.Join(env.dataDir, vocab.VocabularyFile))
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, string(text), "apple | meaning of apple")

	env.mustRun(t, "words", "delete", "--level", "3", "banana")
	if _, err := env.run(t, "words", "delete", "--level", "3", "banana"); err == nil {
		t.Fatal("expected error deleting a missing word")
	}

	out = env.mustRun(t, "words", "export", "--level", "3", "--file", filepath.Join(env.dataDir, "out.txt"))
	requireContains(t, out, "Exported 1 words from level3")
}
