package testsupport

import (
	"context"
	"testing"

	"vocamail/internal/config"
	"vocamail/internal/schedule"
	"vocamail/internal/subscribers"
)

// MustOpenSubscribers opens the subscriber store for tests and registers cleanup.
func MustOpenSubscribers(t testing.TB, cfg *config.Config) *subscribers.Store {
	t.Helper()

	store, err := subscribers.Open(context.Background(), cfg.SubscribersDBPath())
	if err != nil {
		t.Fatalf("open subscribers: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenSchedule opens the schedule store for tests and registers cleanup.
func MustOpenSchedule(t testing.TB, cfg *config.Config) *schedule.Store {
	t.Helper()

	store, err := schedule.Open(context.Background(), cfg.ScheduleDBPath(), cfg.Location())
	if err != nil {
		t.Fatalf("open schedule: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// AddSubscriber inserts a subscriber and fails the test on error.
func AddSubscriber(t testing.TB, store *subscribers.Store, email string, level int) *subscribers.Subscriber {
	t.Helper()

	sub, err := store.Add(context.Background(), subscribers.NewSubscriber{Email: email, Name: email, Level: level})
	if err != nil {
		t.Fatalf("add subscriber %s: %v", email, err)
	}
	return sub
}
