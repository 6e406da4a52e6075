package vocab

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"vocamail/internal/fileutil"
)

// File names inside the data directory.
const (
	LearnedFile    = "learned.json"
	MailedFile     = "mailed.json"
	VocabularyFile = "vocabulary.txt"
)

// MailedDateLayout is the timestamp format written to mailed_date and sent_date.
const MailedDateLayout = "2006-01-02T15:04:05.000000"

// Levels lists the difficulty levels with a word pool.
var Levels = []int{1, 2, 3}

var (
	// ErrWordNotFound is returned when a named word is absent from a collection.
	ErrWordNotFound = errors.New("word not found")
	// ErrUnknownCollection is returned for collection names the store does not manage.
	ErrUnknownCollection = errors.New("unknown collection")
)

// ValidLevel reports whether level has a word pool.
func ValidLevel(level int) bool {
	return level >= 1 && level <= 3
}

// LevelFile returns the pool file name for level.
func LevelFile(level int) string {
	return fmt.Sprintf("level%d.json", level)
}

// SelectedLevelFile returns the per-cohort staging file name for level.
func SelectedLevelFile(level int) string {
	return fmt.Sprintf("selected_level%d.json", level)
}

// Store reads and writes the collections in one data directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// WithClock overrides the clock used to stamp staged records.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Path returns the absolute path of name inside the data directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// LoadLevel returns the pool for level. Pools may be stored as a JSON array
// or as an object keyed by category; in the latter case the key fills any
// empty category. A missing file yields an empty pool.
func (s *Store) LoadLevel(level int) ([]WordEntry, error) {
	if !ValidLevel(level) {
		return nil, fmt.Errorf("level %d: %w", level, ErrUnknownCollection)
	}
	path := s.Path(LevelFile(level))
	data, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := decodePool(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entries, nil
}

func decodePool(data []byte) ([]WordEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []WordEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var grouped map[string][]WordEntry
	if err := json.Unmarshal(trimmed, &grouped); err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var entries []WordEntry
	for _, category := range categories {
		for _, e := range grouped[category] {
			if strings.TrimSpace(e.Category) == "" {
				e.Category = category
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// SaveLevel replaces the pool for level with entries as a JSON array.
func (s *Store) SaveLevel(level int, entries []WordEntry) error {
	if !ValidLevel(level) {
		return fmt.Errorf("level %d: %w", level, ErrUnknownCollection)
	}
	return fileutil.WriteJSONAtomic(s.Path(LevelFile(level)), nonNil(entries))
}

// LoadLearned returns the learned collection.
func (s *Store) LoadLearned() ([]WordEntry, error) {
	var entries []WordEntry
	if _, err := fileutil.ReadJSON(s.Path(LearnedFile), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveLearned replaces the learned collection.
func (s *Store) SaveLearned(entries []WordEntry) error {
	return fileutil.WriteJSONAtomic(s.Path(LearnedFile), nonNil(entries))
}

// Mailed returns the default staging file.
func (s *Store) Mailed() StagingFile {
	return StagingFile{Path: s.Path(MailedFile)}
}

// SelectedLevel returns the staging file used for one cohort.
func (s *Store) SelectedLevel(level int) StagingFile {
	return StagingFile{Path: s.Path(SelectedLevelFile(level))}
}

// VocabularyPath returns the working vocabulary text file.
func (s *Store) VocabularyPath() string {
	return s.Path(VocabularyFile)
}

// LoadCollection returns the entries of a named collection: "level1".."level3",
// "learned", "mailed", or "vocabulary".
func (s *Store) LoadCollection(name string) ([]WordEntry, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "learned":
		return s.LoadLearned()
	case "mailed":
		records, err := s.Mailed().Load()
		if err != nil {
			return nil, err
		}
		return Entries(records), nil
	case "vocabulary":
		return ReadText(s.VocabularyPath())
	}
	if level, ok := ParseLevelName(name); ok {
		return s.LoadLevel(level)
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownCollection)
}

// ParseLevelName accepts "level2" or "2".
func ParseLevelName(name string) (int, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "level")
	if len(name) != 1 || name[0] < '1' || name[0] > '3' {
		return 0, false
	}
	return int(name[0] - '0'), true
}

// AddToLevel appends entries to the pool for level, skipping words already
// present. It returns the number added.
func (s *Store) AddToLevel(level int, entries []WordEntry) (int, error) {
	pool, err := s.LoadLevel(level)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, e := range entries {
		var ok bool
		if pool, ok = AppendUnique(pool, e); ok {
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.SaveLevel(level, pool); err != nil {
		return 0, err
	}
	return added, nil
}

// DeleteFromLevel removes word (optionally restricted to category) from a pool.
func (s *Store) DeleteFromLevel(level int, word, category string) error {
	pool, err := s.LoadLevel(level)
	if err != nil {
		return err
	}
	pool, removed := Remove(pool, word, category)
	if removed == 0 {
		return fmt.Errorf("%s in level %d: %w", word, level, ErrWordNotFound)
	}
	return s.SaveLevel(level, pool)
}

// MarkLearned copies word from the pool for level into the learned
// collection and removes it from the pool.
func (s *Store) MarkLearned(level int, word string) (WordEntry, error) {
	pool, err := s.LoadLevel(level)
	if err != nil {
		return WordEntry{}, err
	}
	idx := Find(pool, word, "")
	if idx < 0 {
		return WordEntry{}, fmt.Errorf("%s in level %d: %w", word, level, ErrWordNotFound)
	}
	entry := pool[idx]
	if strings.TrimSpace(entry.Difficulty) == "" {
		entry.Difficulty = fmt.Sprintf("level%d", level)
	}

	learned, err := s.LoadLearned()
	if err != nil {
		return WordEntry{}, err
	}
	learned, _ = AppendUnique(learned, entry)
	if err := s.SaveLearned(learned); err != nil {
		return WordEntry{}, err
	}

	pool, _ = Remove(pool, word, "")
	if err := s.SaveLevel(level, pool); err != nil {
		return WordEntry{}, err
	}
	return entry, nil
}

// StageForMail appends a fresh record per entry to staging, stamped with the
// current time. Re-staging a word creates a new record.
func (s *Store) StageForMail(staging StagingFile, entries []WordEntry) ([]MailedRecord, error) {
	existing, err := staging.Load()
	if err != nil {
		return nil, err
	}
	records := Stamp(entries, s.now())
	if err := staging.Save(append(existing, records...)); err != nil {
		return nil, err
	}
	return records, nil
}

// Stamp converts entries to staging records with mailed_date set to now.
func Stamp(entries []WordEntry, now time.Time) []MailedRecord {
	stamp := now.Format(MailedDateLayout)
	records := make([]MailedRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, MailedRecord{WordEntry: e, MailedDate: stamp})
	}
	return records
}

// IsStaged reports whether word has a record in staging that has not been sent.
func IsStaged(records []MailedRecord, word string) bool {
	for _, r := range records {
		if !r.Sent() && SameWord(r.Word, word) {
			return true
		}
	}
	return false
}

// MoveBack returns word to the working vocabulary text file and removes it
// from the mailed and learned collections.
func (s *Store) MoveBack(word string) (WordEntry, error) {
	mailed := s.Mailed()
	records, err := mailed.Load()
	if err != nil {
		return WordEntry{}, err
	}
	learned, err := s.LoadLearned()
	if err != nil {
		return WordEntry{}, err
	}

	var entry WordEntry
	if idx := Find(records, word, ""); idx >= 0 {
		entry = records[idx].WordEntry
	} else if idx := Find(learned, word, ""); idx >= 0 {
		entry = learned[idx]
	} else {
		return WordEntry{}, fmt.Errorf("%s in mailed or learned: %w", word, ErrWordNotFound)
	}

	if err := AppendText(s.VocabularyPath(), []WordEntry{entry}); err != nil {
		return WordEntry{}, err
	}
	if remaining, removed := Remove(records, word, ""); removed > 0 {
		if err := mailed.Save(remaining); err != nil {
			return WordEntry{}, err
		}
	}
	if remaining, removed := Remove(learned, word, ""); removed > 0 {
		if err := s.SaveLearned(remaining); err != nil {
			return WordEntry{}, err
		}
	}
	return entry, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
