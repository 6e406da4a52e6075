package vocab

import (
	"strings"

	"golang.org/x/text/cases"
)

// WordEntry is one vocabulary item.
type WordEntry struct {
	Word        string   `json:"word"`
	Meaning     string   `json:"meaning"`
	Phrase      string   `json:"phrase"`
	Category    string   `json:"category,omitempty"`
	Media       string   `json:"media,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Expressions []string `json:"expressions,omitempty"`
}

// Key returns the word and category that identify the entry within a collection.
func (e WordEntry) Key() (string, string) {
	return e.Word, e.Category
}

// MailedRecord is a WordEntry staged for mailing.
type MailedRecord struct {
	WordEntry
	MailedDate string  `json:"mailed_date,omitempty"`
	Date       string  `json:"date,omitempty"`
	SentDate   *string `json:"sent_date"`
}

// RawDate returns the staging timestamp, falling back to the legacy date field.
func (r MailedRecord) RawDate() string {
	if strings.TrimSpace(r.MailedDate) != "" {
		return r.MailedDate
	}
	return r.Date
}

// Sent reports whether a dispatch has marked the record.
func (r MailedRecord) Sent() bool {
	return r.SentDate != nil
}

// Keyed is implemented by collection items that carry a word and category.
type Keyed interface {
	Key() (word, category string)
}

// FoldWord normalizes a word for case-insensitive comparison.
func FoldWord(word string) string {
	return cases.Fold().String(strings.TrimSpace(word))
}

// SameWord reports whether a and b name the same word.
func SameWord(a, b string) bool {
	return FoldWord(a) == FoldWord(b)
}

func matches(item Keyed, word, category string) bool {
	w, c := item.Key()
	if !SameWord(w, word) {
		return false
	}
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(strings.TrimSpace(c), category)
}

// Find returns the index of the first item matching word and, when non-empty,
// category. It returns -1 when nothing matches.
func Find[T Keyed](items []T, word, category string) int {
	for i, item := range items {
		if matches(item, word, category) {
			return i
		}
	}
	return -1
}

// Remove drops every item matching word and, when non-empty, category. It
// returns the remaining items and the number removed.
func Remove[T Keyed](items []T, word, category string) ([]T, int) {
	kept := make([]T, 0, len(items))
	removed := 0
	for _, item := range items {
		if matches(item, word, category) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}

// AppendUnique appends entry unless an entry with the same word already exists.
func AppendUnique(entries []WordEntry, entry WordEntry) ([]WordEntry, bool) {
	if Find(entries, entry.Word, "") >= 0 {
		return entries, false
	}
	return append(entries, entry), true
}

// FilterByCategory returns entries in category. An empty category or "all"
// returns every entry.
func FilterByCategory(entries []WordEntry, category string) []WordEntry {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, "all") {
		return entries
	}
	out := make([]WordEntry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Category), category) {
			out = append(out, e)
		}
	}
	return out
}

// Entries strips staging metadata from records.
func Entries(records []MailedRecord) []WordEntry {
	out := make([]WordEntry, 0, len(records))
	for _, r := range records {
		out = append(out, r.WordEntry)
	}
	return out
}
