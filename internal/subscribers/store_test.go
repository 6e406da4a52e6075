package subscribers_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"vocamail/internal/subscribers"
	"vocamail/internal/validation"
)

func openStore(t *testing.T) *subscribers.Store {
	t.Helper()
	store, err := subscribers.Open(context.Background(), filepath.Join(t.TempDir(), "subscribers.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddListAndPartition(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	inputs := []subscribers.NewSubscriber{
		{Email: "a@example.com", Name: "A", Level: 1, Media: "email"},
		{Email: "b@example.com", Name: "B", Level: 2},
		{Email: " c@example.com ", Name: "C", Level: 2},
	}
	for _, in := range inputs {
		if _, err := store.Add(ctx, in); err != nil {
			t.Fatalf("Add(%s): %v", in.Email, err)
		}
	}

	subs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 3 || subs[2].Email != "c@example.com" {
		t.Fatalf("unexpected subscribers %+v", subs)
	}
	if subs[0].SubscribedAt.IsZero() || subs[0].Media != "email" || subs[1].Media != "" {
		t.Fatalf("unexpected row details %+v", subs[:2])
	}

	parts := subscribers.Partition(subs)
	if len(parts[1]) != 1 || len(parts[2]) != 2 || len(parts[3]) != 0 {
		t.Fatalf("unexpected partition %+v", parts)
	}

	level2, err := store.ListByLevel(ctx, 2)
	if err != nil || len(level2) != 2 {
		t.Fatalf("ListByLevel = %+v, %v", level2, err)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	store := openStore(t)
	_, err := store.Add(context.Background(), subscribers.NewSubscriber{Email: "not-an-email", Name: "", Level: 5})
	if !errors.Is(err, subscribers.ErrInvalidSubscriber) {
		t.Fatalf("expected ErrInvalidSubscriber, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, field := range []string{"email", "name", "level"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected %s in field errors %v", field, verr.Fields)
		}
	}
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "dup@example.com", Name: "One", Level: 1, Media: "sms"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "dup@example.com", Name: "Two", Level: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	level := 3
	n, err := store.Update(ctx, "dup@example.com", subscribers.Patch{Level: &level})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both duplicate rows updated, got %d", n)
	}

	subs, _ := store.FindByEmail(ctx, "dup@example.com")
	if subs[0].Level != 3 || subs[0].Name != "One" || subs[0].Media != "sms" {
		t.Fatalf("only level should change, got %+v", subs[0])
	}

	newEmail := "moved@example.com"
	if _, err := store.Update(ctx, "dup@example.com", subscribers.Patch{Email: &newEmail}); err != nil {
		t.Fatalf("Update email: %v", err)
	}
	if moved, _ := store.FindByEmail(ctx, newEmail); len(moved) != 2 {
		t.Fatalf("expected 2 rows at new email, got %d", len(moved))
	}
}

func TestUpdateRejectsBadPatches(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "a@example.com", Name: "A", Level: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := store.Update(ctx, "a@example.com", subscribers.Patch{}); !errors.Is(err, subscribers.ErrInvalidPatch) {
		t.Fatalf("empty patch: expected ErrInvalidPatch, got %v", err)
	}
	zero := 0
	if _, err := store.Update(ctx, "a@example.com", subscribers.Patch{Level: &zero}); !errors.Is(err, subscribers.ErrInvalidPatch) {
		t.Fatalf("level 0: expected ErrInvalidPatch, got %v", err)
	}
	bad := "nope"
	if _, err := store.Update(ctx, "a@example.com", subscribers.Patch{Email: &bad}); !errors.Is(err, subscribers.ErrInvalidPatch) {
		t.Fatalf("bad email: expected ErrInvalidPatch, got %v", err)
	}
	name := "Z"
	if _, err := store.Update(ctx, "ghost@example.com", subscribers.Patch{Name: &name}); !errors.Is(err, subscribers.ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesAllMatchingRows(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	for _, name := range []string{"One", "Two"} {
		if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "dup@example.com", Name: name, Level: 2}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := store.Add(ctx, subscribers.NewSubscriber{Email: "keep@example.com", Name: "Keep", Level: 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := store.Delete(ctx, "dup@example.com")
	if err != nil || n != 2 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	subs, _ := store.List(ctx)
	if len(subs) != 1 || subs[0].Email != "keep@example.com" {
		t.Fatalf("unexpected remaining %+v", subs)
	}
	if _, err := store.Delete(ctx, "dup@example.com"); !errors.Is(err, subscribers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenMigratesLegacyTextLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.db")
	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	stmts := []string{
		`CREATE TABLE subscribers (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT NOT NULL, name TEXT NOT NULL, level TEXT NOT NULL, media TEXT, subscribed_at TEXT NOT NULL)`,
		`INSERT INTO subscribers (email, name, level, media, subscribed_at) VALUES ('a@example.com', 'A', 'level2', NULL, '2024-01-01T10:00:00.123456')`,
		`INSERT INTO subscribers (email, name, level, media, subscribed_at) VALUES ('b@example.com', 'B', '3', 'email', '2024-01-02T10:00:00')`,
		`INSERT INTO subscribers (email, name, level, media, subscribed_at) VALUES ('c@example.com', 'C', 'expert', NULL, '2024-01-03T10:00:00')`,
	}
	for _, stmt := range stmts {
		if _, err := legacy.Exec(stmt); err != nil {
			t.Fatalf("seed legacy: %v", err)
		}
	}
	_ = legacy.Close()

	store, err := subscribers.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	subs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []int{2, 3, 1}
	for i, sub := range subs {
		if sub.Level != want[i] {
			t.Fatalf("subscriber %s level = %d, want %d", sub.Email, sub.Level, want[i])
		}
	}
	if subs[0].SubscribedAt.Year() != 2024 || subs[0].SubscribedAt.Nanosecond() != 123456000 {
		t.Fatalf("legacy timestamp not parsed: %v", subs[0].SubscribedAt)
	}
}

func TestEmailsDeduplicates(t *testing.T) {
	got := subscribers.Emails([]subscribers.Subscriber{
		{Email: "a@example.com"}, {Email: "A@example.com"}, {Email: ""}, {Email: "b@example.com"},
	})
	if len(got) != 2 || got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Fatalf("unexpected emails %v", got)
	}
}
