package subscribers

import "strings"

// Levels lists the subscriber levels that receive mail.
var Levels = []int{1, 2, 3}

// Partition groups subscribers by level. Every level in Levels is present in
// the result, possibly empty; other levels are dropped.
func Partition(subs []Subscriber) map[int][]Subscriber {
	out := make(map[int][]Subscriber, len(Levels))
	for _, level := range Levels {
		out[level] = []Subscriber{}
	}
	for _, sub := range subs {
		if _, ok := out[sub.Level]; ok {
			out[sub.Level] = append(out[sub.Level], sub)
		}
	}
	return out
}

// Emails returns the addresses of subs in order, dropping case-insensitive duplicates.
func Emails(subs []Subscriber) []string {
	seen := make(map[string]struct{}, len(subs))
	out := make([]string, 0, len(subs))
	for _, sub := range subs {
		email := normalizeEmail(sub.Email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out
}
