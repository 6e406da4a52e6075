// Package schedule keeps the run-due table of URL-tagged events and finds the
// entries whose run time falls within a symmetric window around now.
package schedule

import (
	"sort"
	"time"
)

// DefaultWindow is the due window used when none is configured.
const DefaultWindow = 60 * time.Second

// Entry is one scheduled event.
type Entry struct {
	ID        int64      `json:"id"`
	RunAt     time.Time  `json:"run_at"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Memo      string     `json:"memo"`
	CreatedAt time.Time  `json:"created_at"`
	Played    bool       `json:"played"`
	PlayedAt  *time.Time `json:"played_at"`
}

// FindDue returns unplayed entries whose run time is within window of now,
// earliest first.
func FindDue(entries []Entry, now time.Time, window time.Duration) []Entry {
	if window < 0 {
		window = -window
	}
	var due []Entry
	for _, e := range entries {
		if e.Played {
			continue
		}
		diff := e.RunAt.Sub(now)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			due = append(due, e)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	return due
}
