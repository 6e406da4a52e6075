package cohort

import (
	"path/filepath"
	"strconv"
	"time"

	"vocamail/internal/fileutil"
	"vocamail/internal/subscribers"
)

// CacheFile is the partition cache written at the start of each cycle.
const CacheFile = "subscribers_by_level.json"

type cachedSubscriber struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Level        int     `json:"level"`
	Media        string  `json:"media"`
	SubscribedAt *string `json:"subscribed_at"`
}

// PartitionCache persists subscribers grouped by level as a JSON object
// keyed by the level number as a string.
type PartitionCache struct {
	path string
}

// NewPartitionCache returns the cache inside dir.
func NewPartitionCache(dir string) *PartitionCache {
	return &PartitionCache{path: filepath.Join(dir, CacheFile)}
}

// Path returns the cache file location.
func (c *PartitionCache) Path() string {
	return c.path
}

// Save writes parts to the cache.
func (c *PartitionCache) Save(parts map[int][]subscribers.Subscriber) error {
	out := make(map[string][]cachedSubscriber, len(parts))
	for level, subs := range parts {
		rows := make([]cachedSubscriber, 0, len(subs))
		for _, sub := range subs {
			row := cachedSubscriber{ID: sub.ID, Email: sub.Email, Name: sub.Name, Level: sub.Level, Media: sub.Media}
			if !sub.SubscribedAt.IsZero() {
				ts := sub.SubscribedAt.Format("2006-01-02T15:04:05.000000")
				row.SubscribedAt = &ts
			}
			rows = append(rows, row)
		}
		out[strconv.Itoa(level)] = rows
	}
	return fileutil.WriteJSONAtomic(c.path, out)
}

// Load reads the cache. A missing file yields an empty partition.
func (c *PartitionCache) Load() (map[int][]subscribers.Subscriber, error) {
	var raw map[string][]cachedSubscriber
	if _, err := fileutil.ReadJSON(c.path, &raw); err != nil {
		return nil, err
	}
	parts := make(map[int][]subscribers.Subscriber, len(raw))
	for key, rows := range raw {
		level, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		subs := make([]subscribers.Subscriber, 0, len(rows))
		for _, row := range rows {
			sub := subscribers.Subscriber{ID: row.ID, Email: row.Email, Name: row.Name, Level: row.Level, Media: row.Media}
			if row.SubscribedAt != nil {
				if ts, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", *row.SubscribedAt, time.Local); err == nil {
					sub.SubscribedAt = ts
				}
			}
			subs = append(subs, sub)
		}
		parts[level] = subs
	}
	return parts, nil
}

// Empty reports whether every mailing level in parts has no subscribers.
func Empty(parts map[int][]subscribers.Subscriber) bool {
	for _, level := range subscribers.Levels {
		if len(parts[level]) > 0 {
			return false
		}
	}
	return true
}
