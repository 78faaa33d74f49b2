package db

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WordRecord is one dictionary entry. WordLower is the lookup key everywhere;
// Word preserves original casing for display only.
type WordRecord struct {
	Word         string `json:"word"`
	WordLower    string `json:"wordLower"`
	Phonetic     string `json:"phonetic,omitempty"`
	Definition   string `json:"definition,omitempty"`
	Translation  string `json:"translation,omitempty"`
	PartOfSpeech string `json:"pos,omitempty"`
	Collins      int    `json:"collins,omitempty"`
	Oxford       bool   `json:"oxford,omitempty"`
	Tag          string `json:"tag,omitempty"`
	BNC          int    `json:"bnc,omitempty"`
	Frq          int    `json:"frq,omitempty"`
	Exchange     string `json:"exchange,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Audio        string `json:"audio,omitempty"`
}

// LowerWord normalizes a word to its lookup key.
func LowerWord(s string) string {
	return cases.Lower(language.English).String(s)
}
