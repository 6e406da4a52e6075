// Package maildue decides which staged records are due today and marks
// dispatched records as sent.
package maildue

import (
	"strings"
	"time"

	"vocamail/internal/vocab"
)

const dateLayout = "2006-01-02"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	dateLayout,
}

// EffectiveDate extracts the YYYY-MM-DD date component of an ISO-8601
// timestamp, taken in the value's own offset. Unparseable input falls back to
// its first ten characters. ok is false for empty input.
func EffectiveDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(dateLayout), true
		}
	}
	if len(raw) > len(dateLayout) {
		return raw[:len(dateLayout)], true
	}
	return raw, true
}

// RecordDate returns the effective date of a staged record.
func RecordDate(r vocab.MailedRecord) (string, bool) {
	return EffectiveDate(r.RawDate())
}

// DueMatches returns the unsent records whose effective date equals today's
// local calendar date, in stored order. Records without a date never match.
func DueMatches(records []vocab.MailedRecord, today time.Time) []vocab.MailedRecord {
	day := today.Format(dateLayout)
	var matches []vocab.MailedRecord
	for _, r := range records {
		if r.Sent() {
			continue
		}
		date, ok := RecordDate(r)
		if !ok || date != day {
			continue
		}
		matches = append(matches, r)
	}
	return matches
}

// MarkSent stamps sent_date on every unsent record in existing whose word and
// effective date equal those of some match. It returns the updated slice and
// the number of records marked. Records already sent keep their sent_date.
func MarkSent(existing, matches []vocab.MailedRecord, now time.Time) ([]vocab.MailedRecord, int) {
	type key struct{ word, date string }
	wanted := make(map[key]struct{}, len(matches))
	for _, m := range matches {
		date, ok := RecordDate(m)
		if !ok {
			continue
		}
		wanted[key{vocab.FoldWord(m.Word), date}] = struct{}{}
	}

	stamp := now.Format(vocab.MailedDateLayout)
	updated := make([]vocab.MailedRecord, len(existing))
	marked := 0
	for i, r := range existing {
		updated[i] = r
		if r.SentDate != nil {
			continue
		}
		date, ok := RecordDate(r)
		if !ok {
			continue
		}
		if _, hit := wanted[key{vocab.FoldWord(r.Word), date}]; hit {
			sent := stamp
			updated[i].SentDate = &sent
			marked++
		}
	}
	return updated, marked
}
