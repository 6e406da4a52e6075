package main

import (
	"strconv"
	"testing"
	"time"

	"vocamail/internal/schedule"
)

func TestScheduleLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	soon := time.Now().Add(10 * time.Second).UTC().Format(time.RFC3339)
	later := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	var added schedule.Entry
	decodeJSON(t, env.mustRun(t, "--json", "schedule", "add", "--at", soon, "--url", "https://example.com/a", "--title", "soon"), &added)
	env.mustRun(t, "schedule", "add", "--at", later, "--url", "https://example.com/b", "--title", "later")
	id := strconv.FormatInt(added.ID, 10)

	var due []schedule.Entry
	decodeJSON(t, env.mustRun(t, "--json", "schedule", "due"), &due)
	if len(due) != 1 || due[0].ID != added.ID {
		t.Fatalf("expected only entry %d due, got %+v", added.ID, due)
	}

	env.mustRun(t, "schedule", "due", "--mark")
	requireContains(t, env.mustRun(t, "schedule", "due"), "Nothing due")

	env.mustRun(t, "schedule", "reset", id)
	decodeJSON(t, env.mustRun(t, "--json", "schedule", "due"), &due)
	if len(due) != 1 {
		t.Fatalf("expected reset entry to be due again, got %+v", due)
	}

	env.mustRun(t, "schedule", "update", id, "--title", "renamed")
	requireContains(t, env.mustRun(t, "schedule", "list"), "renamed")

	env.mustRun(t, "schedule", "mark-played", id)
	env.mustRun(t, "schedule", "delete", id)
	if _, err := env.run(t, "schedule", "delete", id); err == nil {
		t.Fatal("expected error deleting a missing entry")
	}
}

func TestScheduleAddRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "schedule", "add", "--at", "tomorrow", "--url", "https://example.com"); err == nil {
		t.Fatal("expected invalid time error")
	}
	if _, err := env.run(t, "schedule", "add", "--at", "2024-01-01 10:00", "--url", "not a url"); err == nil {
		t.Fatal("expected invalid url error")
	}
}

func TestParseRunAtUsesLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	ts, err := parseRunAt("2024-01-01 10:00", seoul)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("parsed %s", ts)
	}
}
