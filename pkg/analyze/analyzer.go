package analyze

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/jmhart/lexiread/pkg/batch"
	"github.com/jmhart/lexiread/pkg/db"
	"github.com/jmhart/lexiread/pkg/lemma"
	"github.com/jmhart/lexiread/pkg/worddb"
)

// HighlightMode selects which analyzed words get marked for highlighting.
type HighlightMode int

const (
	// ModeUnknown highlights words above the reader's level that are not
	// already being learned (learning words are highlighted regardless).
	ModeUnknown HighlightMode = iota
	// ModeDifficult highlights every word above the reader's level.
	ModeDifficult
	// ModeAll highlights every word that is not mastered.
	ModeAll
)

var modeNames = [...]string{"unknown", "difficult", "all"}

func (m HighlightMode) String() string {
	if m < ModeUnknown || m > ModeAll {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode resolves a highlight mode name.
func ParseMode(s string) (HighlightMode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return HighlightMode(i), nil
		}
	}
	return ModeUnknown, fmt.Errorf("unknown highlight mode: %q", s)
}

// VocabSets holds the reader's vocabulary membership, keyed by lowercased
// word. A word never appears in both sets.
type VocabSets struct {
	Learning map[string]bool
	Mastered map[string]bool
}

// WordScore is the per-word analysis result.
type WordScore struct {
	Word        string
	Tier        Tier
	Score       int
	Translation string
	Highlight   bool
}

// Analysis aggregates the results for one text.
type Analysis struct {
	Words           []WordScore
	DifficultyScore int
	NewWords        []string

	index map[string]int
}

// Lookup returns the score entry for a word, case-insensitively.
func (a *Analysis) Lookup(word string) (WordScore, bool) {
	i, ok := a.index[db.LowerWord(word)]
	if !ok {
		return WordScore{}, false
	}
	return a.Words[i], true
}

// parallelThreshold is the unique-word count below which resolution stays
// sequential; pool startup costs more than it saves on short texts.
const parallelThreshold = 16

// Analyzer resolves word difficulty against the tier table, falling back
// through lemmatizer candidates, and applies highlight rules.
type Analyzer struct {
	Tiers      *FrequencyTiers
	Lemmatizer *lemma.Lemmatizer
	DB         *worddb.Database // optional; supplies translations and exchange lemmas

	// Workers >1 enables parallel difficulty resolution.
	Workers int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

// ExtractWords returns the maximal runs of Latin letters in text, in
// order, skipping single-letter tokens.
func ExtractWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if w := text[start:i]; len([]rune(w)) > 1 {
				words = append(words, w)
			}
			start = -1
		}
	}
	if start >= 0 {
		if w := text[start:]; len([]rune(w)) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// AnalyzeText extracts words from text and analyzes them.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string, level Tier, mode HighlightMode, vocab VocabSets) (*Analysis, error) {
	return a.AnalyzeWords(ctx, ExtractWords(text), level, mode, vocab)
}

// AnalyzeWords analyzes the given words, deduplicated case-insensitively
// with first-seen order preserved. The aggregate difficulty score is the
// rounded mean over unique words; empty input scores zero.
func (a *Analyzer) AnalyzeWords(ctx context.Context, words []string, level Tier, mode HighlightMode, vocab VocabSets) (*Analysis, error) {
	unique := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		lower := db.LowerWord(w)
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		unique = append(unique, lower)
	}

	scores := make([]WordScore, len(unique))
	if err := a.resolveAll(ctx, unique, scores); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Words: scores,
		index: make(map[string]int, len(scores)),
	}
	total := 0
	for i := range scores {
		ws := &scores[i]
		ws.Score = ws.Tier.Score()
		ws.Highlight = highlight(ws.Tier, level, mode, vocab, ws.Word)
		if ws.Highlight && !vocab.Learning[ws.Word] {
			analysis.NewWords = append(analysis.NewWords, ws.Word)
		}
		analysis.index[ws.Word] = i
		total += ws.Score
	}
	if len(scores) > 0 {
		analysis.DifficultyScore = int(math.Round(float64(total) / float64(len(scores))))
	}
	return analysis, nil
}

// highlight applies the mode rules. Mastered words are never highlighted;
// learning words always are.
func highlight(tier, level Tier, mode HighlightMode, vocab VocabSets, word string) bool {
	if vocab.Mastered[word] {
		return false
	}
	if vocab.Learning[word] {
		return true
	}
	switch mode {
	case ModeAll:
		return true
	case ModeDifficult, ModeUnknown:
		return tier > level
	}
	return false
}

func (a *Analyzer) resolveAll(ctx context.Context, words []string, out []WordScore) error {
	if a.Workers > 1 && len(words) >= parallelThreshold {
		return a.resolveParallel(ctx, words, out)
	}
	for i, w := range words {
		ws, err := a.resolve(ctx, w)
		if err != nil {
			return err
		}
		out[i] = ws
	}
	return nil
}

func (a *Analyzer) resolveParallel(ctx context.Context, words []string, out []WordScore) error {
	pool := batch.NewPool(a.Workers, len(words))
	pool.Start(ctx)

	var mu sync.Mutex
	var firstErr error
	for i, w := range words {
		i, w := i, w
		err := pool.Submit(func(ctx context.Context) error {
			ws, err := a.resolve(ctx, w)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return err
			}
			out[i] = ws
			return nil
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

// resolve determines a word's tier and translation. Tier resolution order:
// exact match, then the dictionary's own lemma from the exchange field,
// then each lemmatizer candidate. Unresolved words are expert.
func (a *Analyzer) resolve(ctx context.Context, word string) (WordScore, error) {
	ws := WordScore{Word: word, Tier: TierExpert}

	var rec *db.WordRecord
	if a.DB != nil {
		r, err := a.DB.Query(ctx, word)
		if err != nil {
			return ws, fmt.Errorf("look up %q: %w", word, err)
		}
		rec = r
	}
	if rec != nil {
		ws.Translation = rec.Translation
	}

	if t, ok := a.Tiers.Lookup(word); ok {
		ws.Tier = t
		return ws, nil
	}
	if rec != nil {
		if lm := lemma.LemmaFromExchange(rec.Exchange, word); lm != "" {
			if t, ok := a.Tiers.Lookup(db.LowerWord(lm)); ok {
				ws.Tier = t
				return ws, nil
			}
		}
	}
	if a.Lemmatizer != nil {
		for _, cand := range a.Lemmatizer.Lemmatize(word) {
			if t, ok := a.Tiers.Lookup(cand); ok {
				ws.Tier = t
				return ws, nil
			}
		}
	}
	return ws, nil
}
