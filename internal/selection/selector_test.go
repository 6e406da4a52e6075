package selection_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"testing"

	"vocamail/internal/selection"
	"vocamail/internal/vocab"
)

func pool(n int) []vocab.WordEntry {
	entries := make([]vocab.WordEntry, n)
	for i := range entries {
		entries[i] = vocab.WordEntry{Word: fmt.Sprintf("w%02d", i)}
	}
	return entries
}

func TestRandomSelectionIsDistinctSubset(t *testing.T) {
	p := pool(10)
	inPool := make(map[string]bool, len(p))
	for _, e := range p {
		inPool[e.Word] = true
	}

	for seed := uint64(0); seed < 50; seed++ {
		sel := selection.New(rand.New(rand.NewPCG(seed, seed+1)))
		for count := 1; count <= len(p); count++ {
			got := sel.Select(p, count, selection.PolicyRandom, 0)
			if len(got) != count {
				t.Fatalf("seed %d count %d: got %d entries", seed, count, len(got))
			}
			seen := map[string]bool{}
			for _, e := range got {
				if !inPool[e.Word] {
					t.Fatalf("entry %q not from pool", e.Word)
				}
				if seen[e.Word] {
					t.Fatalf("duplicate entry %q", e.Word)
				}
				seen[e.Word] = true
			}
		}
	}
}

func TestRandomSelectionReturnsWholePoolWhenCountExceeds(t *testing.T) {
	p := pool(3)
	got := selection.New(rand.New(rand.NewPCG(7, 7))).Select(p, 5, selection.PolicyRandom, 0)
	if len(got) != 3 {
		t.Fatalf("expected whole pool, got %d", len(got))
	}
	seen := map[string]int{}
	for _, e := range got {
		seen[e.Word]++
	}
	for _, e := range p {
		if seen[e.Word] != 1 {
			t.Fatalf("entry %q returned %d times", e.Word, seen[e.Word])
		}
	}
}

func TestRandomSelectionIsDeterministicForSeed(t *testing.T) {
	p := pool(20)
	a := selection.New(rand.New(rand.NewPCG(42, 1))).Select(p, 4, selection.PolicyRandom, 0)
	b := selection.New(rand.New(rand.NewPCG(42, 1))).Select(p, 4, selection.PolicyRandom, 0)
	for i := range a {
		if a[i].Word != b[i].Word {
			t.Fatalf("same seed should give same selection: %v vs %v", a, b)
		}
	}
}

func TestSequentialSelectionClipsWithoutWrapping(t *testing.T) {
	sel := selection.New(nil)
	p := pool(5)

	got := sel.Select(p, 2, selection.PolicySequential, 1)
	if len(got) != 2 || got[0].Word != "w01" || got[1].Word != "w02" {
		t.Fatalf("unexpected slice %+v", got)
	}
	got = sel.Select(p, 3, selection.PolicySequential, 4)
	if len(got) != 1 || got[0].Word != "w04" {
		t.Fatalf("expected clipped tail, got %+v", got)
	}
	if got := sel.Select(p, 2, selection.PolicySequential, 5); len(got) != 0 {
		t.Fatalf("cursor past end should be empty, got %+v", got)
	}
}

func TestUnknownPolicyAndBadCount(t *testing.T) {
	sel := selection.New(nil)
	if got := sel.Select(pool(3), 2, selection.Policy("alphabetical"), 0); len(got) != 0 {
		t.Fatalf("unknown policy should be empty, got %+v", got)
	}
	if got := sel.Select(pool(3), 0, selection.PolicyRandom, 0); len(got) != 0 {
		t.Fatalf("zero count should be empty, got %+v", got)
	}
	if _, err := selection.ParsePolicy("alphabetical"); !errors.Is(err, selection.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
	if p, err := selection.ParsePolicy(" Sequential "); err != nil || p != selection.PolicySequential {
		t.Fatalf("ParsePolicy = %q, %v", p, err)
	}
}

func TestNextCursor(t *testing.T) {
	tests := []struct {
		current, count, size, want int
	}{
		{current: 0, count: 2, size: 5, want: 2},
		{current: 2, count: 2, size: 5, want: 4},
		{current: 3, count: 2, size: 5, want: 0},
		{current: 4, count: 2, size: 5, want: 0},
		{current: 0, count: 3, size: 0, want: 0},
	}
	for _, tt := range tests {
		if got := selection.NextCursor(tt.current, tt.count, tt.size); got != tt.want {
			t.Fatalf("NextCursor(%d,%d,%d) = %d, want %d", tt.current, tt.count, tt.size, got, tt.want)
		}
	}
}

func TestCursorStoreAdvancePersistsBeforeUse(t *testing.T) {
	store := selection.NewCursorStore(t.TempDir())
	if got := store.Load(); got != 0 {
		t.Fatalf("missing file should read 0, got %d", got)
	}

	steps := []int{2, 4, 0, 2}
	for i, want := range steps {
		got, err := store.Advance(5, 2)
		if err != nil {
			t.Fatalf("step %d Advance: %v", i, err)
		}
		if got != want || store.Load() != want {
			t.Fatalf("step %d: got %d persisted %d, want %d", i, got, store.Load(), want)
		}
	}
}

func TestCursorStoreMalformedReadsZero(t *testing.T) {
	store := selection.NewCursorStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := store.Load(); got != 0 {
		t.Fatalf("malformed file should read 0, got %d", got)
	}
	if err := store.Save(3); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := store.Load(); got != 3 {
		t.Fatalf("expected 3 after save, got %d", got)
	}
}
