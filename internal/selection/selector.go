package selection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"vocamail/internal/vocab"
)

// Policy names a selection strategy.
type Policy string

const (
	PolicyRandom     Policy = "random"
	PolicySequential Policy = "sequential"
)

// ErrUnknownPolicy is returned by ParsePolicy for unsupported names.
var ErrUnknownPolicy = errors.New("unknown selection policy")

// ParsePolicy validates a user-supplied policy name.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case PolicyRandom, PolicySequential:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

// Selector draws words from a pool.
type Selector struct {
	rng *rand.Rand
}

// New returns a selector using rng for the random policy. A nil rng is
// replaced by a freshly seeded source.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// Select returns up to count entries from pool according to policy. Unknown
// policies and non-positive counts yield an empty result. Sequential selection
// never wraps within a call; a cursor past the end yields nothing.
func (s *Selector) Select(pool []vocab.WordEntry, count int, policy Policy, cursor int) []vocab.WordEntry {
	if count <= 0 || len(pool) == 0 {
		return nil
	}
	switch policy {
	case PolicyRandom:
		return s.random(pool, count)
	case PolicySequential:
		return sequential(pool, count, cursor)
	default:
		return nil
	}
}

func (s *Selector) random(pool []vocab.WordEntry, count int) []vocab.WordEntry {
	n := min(count, len(pool))
	idx := s.rng.Perm(len(pool))[:n]
	out := make([]vocab.WordEntry, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func sequential(pool []vocab.WordEntry, count, cursor int) []vocab.WordEntry {
	if cursor < 0 || cursor >= len(pool) {
		return nil
	}
	end := min(cursor+count, len(pool))
	out := make([]vocab.WordEntry, end-cursor)
	copy(out, pool[cursor:end])
	return out
}
