package lemma

import "strings"

// Exchange tags used by the dictionary to encode a word's inflected forms:
// p past, d past participle, i present participle, 3 third person, s plural,
// r comparative, t superlative, 0 lemma, 1 alternate lemma.

// ParseExchange decodes a dictionary exchange field
// ("p:ran/d:run/i:running/0:run") into a tag -> form map. Malformed
// segments are skipped.
func ParseExchange(exchange string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(exchange, "/") {
		tag, value, ok := strings.Cut(part, ":")
		if !ok || tag == "" || value == "" {
			continue
		}
		out[tag] = value
	}
	return out
}

// LemmaFromExchange returns the authoritative lemma encoded in an exchange
// field, or "" when the field carries none. A lemma identical to the word
// itself is not reported. When a direct dictionary hit carries an exchange
// lemma, it takes precedence over rule-cascade guesses.
func LemmaFromExchange(exchange, word string) string {
	if exchange == "" {
		return ""
	}
	forms := ParseExchange(exchange)
	for _, tag := range []string{"0", "1"} {
		if base, ok := forms[tag]; ok && base != word {
			return base
		}
	}
	return ""
}
