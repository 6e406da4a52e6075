package schedule_test

import (
	"testing"
	"time"

	"vocamail/internal/schedule"
)

func TestFindDueWindowAndPlayed(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, loc)
	playedAt := now.Add(-30 * time.Second)

	entries := []schedule.Entry{
		{ID: 1, RunAt: time.Date(2024, 1, 1, 12, 2, 0, 0, loc)},
		{ID: 2, RunAt: time.Date(2024, 1, 1, 11, 59, 30, 0, loc)},
		{ID: 3, RunAt: time.Date(2024, 1, 1, 11, 59, 0, 0, loc), Played: true, PlayedAt: &playedAt},
	}

	due := schedule.FindDue(entries, now, 60*time.Second)
	if len(due) != 1 || due[0].ID != 2 {
		t.Fatalf("expected only entry 2, got %+v", due)
	}
}

func TestFindDueIsSymmetricAndSorted(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []schedule.Entry{
		{ID: 1, RunAt: now.Add(60 * time.Second)},
		{ID: 2, RunAt: now.Add(-60 * time.Second)},
		{ID: 3, RunAt: now.Add(61 * time.Second)},
		{ID: 4, RunAt: now.In(time.FixedZone("KST", 9*60*60))},
	}

	due := schedule.FindDue(entries, now, schedule.DefaultWindow)
	if len(due) != 3 {
		t.Fatalf("expected 3 due entries, got %+v", due)
	}
	want := []int64{2, 4, 1}
	for i, id := range want {
		if due[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, due[i].ID, id)
		}
	}
}
