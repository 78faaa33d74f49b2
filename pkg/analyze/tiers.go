// Package analyze scores tokenized text against a tiered frequency
// dictionary and the user's vocabulary, deciding which words to highlight.
package analyze

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/jmhart/lexiread/pkg/db"
)

// Tier is one of the five difficulty buckets.
type Tier int

const (
	TierCommon Tier = iota
	TierBeginner
	TierIntermediate
	TierAdvanced
	TierExpert
)

var tierNames = [...]string{"common", "beginner", "intermediate", "advanced", "expert"}

func (t Tier) String() string {
	if t < TierCommon || t > TierExpert {
		return "unknown"
	}
	return tierNames[t]
}

// Score maps a tier to its difficulty score: common=0 ... expert=100.
func (t Tier) Score() int { return int(t) * 25 }

// ParseTier resolves a tier name.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return TierExpert, fmt.Errorf("unknown difficulty tier: %q", s)
}

// tierForRank buckets a frequency rank (0-based line number in the
// frequency-ordered source list) into a tier.
func tierForRank(rank int) Tier {
	switch {
	case rank < 1000:
		return TierCommon
	case rank < 3000:
		return TierBeginner
	case rank < 5000:
		return TierIntermediate
	case rank < 8000:
		return TierAdvanced
	default:
		return TierExpert
	}
}

// FrequencyTiers is the tiered frequency dictionary used for difficulty
// lookup. Immutable once built.
type FrequencyTiers struct {
	tiers map[string]Tier
}

// Lookup returns the tier for an exact (lowercased) word.
func (ft *FrequencyTiers) Lookup(word string) (Tier, bool) {
	t, ok := ft.tiers[word]
	return t, ok
}

// Len reports the number of tiered words.
func (ft *FrequencyTiers) Len() int { return len(ft.tiers) }

// LoadTiers reads a frequency-ordered word list (one word per line, most
// frequent first) and buckets it by line ranges.
func LoadTiers(r io.Reader) (*FrequencyTiers, error) {
	tiers := make(map[string]Tier)
	scanner := bufio.NewScanner(r)
	rank := 0
	for scanner.Scan() {
		word := db.LowerWord(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		if _, ok := tiers[word]; !ok {
			tiers[word] = tierForRank(rank)
		}
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return &FrequencyTiers{tiers: tiers}, nil
}

// NewTiers builds a tier table from explicit buckets; handy for tests and
// small seeded dictionaries.
func NewTiers(buckets map[Tier][]string) *FrequencyTiers {
	tiers := make(map[string]Tier)
	for t, words := range buckets {
		for _, w := range words {
			tiers[db.LowerWord(w)] = t
		}
	}
	return &FrequencyTiers{tiers: tiers}
}

// TiersFromStore derives the frequency ordering from a loaded word store,
// ranking by BNC rank, then corpus frequency, then Collins rating. Words
// with no known rank at all are left untiered (they resolve as expert).
func TiersFromStore(conn *sql.DB) (*FrequencyTiers, error) {
	rows, err := conn.Query(`SELECT word_lower FROM words
		WHERE bnc > 0 OR frq > 0 OR collins > 0
		ORDER BY
			CASE WHEN bnc = 0 THEN 1 ELSE 0 END, bnc,
			CASE WHEN frq = 0 THEN 1 ELSE 0 END, frq,
			collins DESC`)
	if err != nil {
		return nil, fmt.Errorf("rank words: %w", err)
	}
	defer rows.Close()

	tiers := make(map[string]Tier)
	rank := 0
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		if _, ok := tiers[word]; !ok {
			tiers[word] = tierForRank(rank)
		}
		rank++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &FrequencyTiers{tiers: tiers}, nil
}
