package analyze

import "html"

// Segment is one piece of the original text: either a word token or the
// verbatim run of delimiters between words. Concatenating Text over all
// segments reproduces the input exactly.
type Segment struct {
	Text      string
	IsWord    bool
	Highlight bool
	Tier      Tier
	// Translation is HTML-escaped, safe to place in an attribute.
	Translation string
}

// ProcessTextForDisplay re-tokenizes text and annotates each word segment
// from the analysis. Word tokens absent from the analysis (single letters,
// or words analyzed from a different text) pass through unannotated.
func ProcessTextForDisplay(text string, analysis *Analysis) []Segment {
	var segments []Segment
	emit := func(s string, word bool) {
		if s == "" {
			return
		}
		seg := Segment{Text: s, IsWord: word}
		if word && analysis != nil {
			if ws, ok := analysis.Lookup(s); ok {
				seg.Highlight = ws.Highlight
				seg.Tier = ws.Tier
				seg.Translation = html.EscapeString(ws.Translation)
			}
		}
		segments = append(segments, seg)
	}

	start := 0
	inWord := false
	for i, r := range text {
		if isWordRune(r) == inWord {
			continue
		}
		emit(text[start:i], inWord)
		start = i
		inWord = !inWord
	}
	emit(text[start:], inWord)
	return segments
}
