// Package lemma resolves inflected word forms to plausible dictionary
// headwords. It combines an optional external morphological analyzer, a
// hand-written suffix-stripping rule cascade, a spelling-variant table, and
// the dictionary's own exchange-field encoding of inflected forms.
package lemma

import "strings"

// MorphAnalyzer is an optional external analyzer queried for lemma guesses
// per part of speech. An empty result means no guess. The rule cascade works
// with the analyzer entirely absent; whichever source produces a dictionary
// hit wins.
type MorphAnalyzer interface {
	Noun(word string) string
	Verb(word string) string
	Adjective(word string) string
}

// Lemmatizer generates candidate headwords for a surface word.
type Lemmatizer struct {
	// Analyzer may be nil.
	Analyzer MorphAnalyzer
}

// New returns a lemmatizer with an optional analyzer.
func New(analyzer MorphAnalyzer) *Lemmatizer {
	return &Lemmatizer{Analyzer: analyzer}
}

// Lemmatize returns an ordered, deduplicated candidate list for word. The
// first element is always the lowercased input. All strategies run
// unconditionally and their results are unioned in generation order, then
// every candidate's American/British counterpart is appended.
func (l *Lemmatizer) Lemmatize(word string) []string {
	w := strings.ToLower(strings.TrimSpace(word))

	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	add(w)
	if w == "" {
		return out
	}

	if l.Analyzer != nil {
		add(l.Analyzer.Noun(w))
		add(l.Analyzer.Verb(w))
		add(l.Analyzer.Adjective(w))
	}

	for _, c := range ruleCandidates(w) {
		add(c)
	}

	// Spelling variants of everything gathered so far, both directions.
	for _, c := range append([]string(nil), out...) {
		if v, ok := spellingVariants[c]; ok {
			add(v)
		}
	}

	return out
}

// ruleCandidates applies the fixed suffix-stripping cascade.
func ruleCandidates(w string) []string {
	var out []string
	add := func(c string) {
		if c != "" {
			out = append(out, c)
		}
	}
	n := len(w)

	// Plural suffixes.
	switch {
	case strings.HasSuffix(w, "sses"):
		add(w[:n-2])
	case strings.HasSuffix(w, "ies") && n > 4:
		add(w[:n-3] + "y")
	case strings.HasSuffix(w, "es") && n > 3:
		add(w[:n-1])
		add(w[:n-2])
	case strings.HasSuffix(w, "s") && n > 2 &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		add(w[:n-1])
	}

	// Verb inflections.
	if strings.HasSuffix(w, "ing") && n > 4 {
		addStemVariants(&out, w[:n-3])
	}
	if strings.HasSuffix(w, "ed") && n > 3 {
		addStemVariants(&out, w[:n-2])
	}

	// Comparative and superlative.
	if strings.HasSuffix(w, "est") && n > 4 {
		addGradeVariants(&out, w[:n-3])
	} else if strings.HasSuffix(w, "er") && n > 3 {
		addGradeVariants(&out, w[:n-2])
	}

	// Adverbs.
	if strings.HasSuffix(w, "ly") && n > 4 {
		stem := w[:n-2]
		add(stem)
		if strings.HasSuffix(stem, "i") {
			add(stem[:len(stem)-1] + "y")
		}
	}

	// Derivational suffixes, each with its known reconstructions.
	for _, rule := range derivationRules {
		if !strings.HasSuffix(w, rule.suffix) || n <= len(rule.suffix)+2 {
			continue
		}
		stem := w[:n-len(rule.suffix)]
		for _, tail := range rule.tails {
			if tail == "-y" {
				if strings.HasSuffix(stem, "i") {
					add(stem[:len(stem)-1] + "y")
				}
				continue
			}
			add(stem + tail)
		}
	}

	return out
}

// addStemVariants adds an inflection stem plus its doubled-consonant and +e
// reconstructions (running -> runn, run, runne).
func addStemVariants(out *[]string, stem string) {
	*out = append(*out, stem)
	if hasDoubledConsonant(stem) {
		*out = append(*out, stem[:len(stem)-1])
	}
	*out = append(*out, stem+"e")
}

// addGradeVariants handles -er/-est stems: doubled consonant, +e, and i->y
// restoration (bigger -> big, easiest -> easy).
func addGradeVariants(out *[]string, stem string) {
	*out = append(*out, stem)
	if hasDoubledConsonant(stem) {
		*out = append(*out, stem[:len(stem)-1])
	}
	*out = append(*out, stem+"e")
	if strings.HasSuffix(stem, "i") {
		*out = append(*out, stem[:len(stem)-1]+"y")
	}
}

// derivationRules maps a derivational suffix to the tails appended to its
// stripped stem. The "-y" tail marks i->y restoration instead of a literal
// append.
var derivationRules = []struct {
	suffix string
	tails  []string
}{
	{"ical", []string{"", "ic", "y"}}, // historical -> historic, history
	{"ic", []string{"", "y"}},          // historic -> history
	{"al", []string{"", "e"}},          // arrival -> arrive
	{"ous", []string{"", "e"}},         // famous -> fame
	{"ive", []string{"", "e"}},         // creative -> create
	{"tion", []string{"te", "t"}},      // creation -> create, invention -> invent
	{"sion", []string{"de", "d"}},      // decision -> decide, extension -> extend
	{"ness", []string{"", "-y"}},       // happiness -> happy
	{"ment", []string{"", "e"}},        // movement -> move
}

func hasDoubledConsonant(s string) bool {
	if len(s) < 2 {
		return false
	}
	a, b := s[len(s)-2], s[len(s)-1]
	return a == b && isConsonant(b)
}

func isConsonant(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return b >= 'a' && b <= 'z'
}
