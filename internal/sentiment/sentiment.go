// Package sentiment implements the lexicon sentiment scorer used to grade
// social posts. Scoring is pure and deterministic: the same text always
// produces the same score, with no model calls and no network access.
package sentiment

import (
	"strings"
	"unicode"
)

// Scorer grades text against a weighted word lexicon.
type Scorer struct {
	lexicon map[string]float64
}

// NewScorer creates a Scorer backed by the built-in lexicon. Entries in extra
// are merged on top, so operators can add or override terms from config.
func NewScorer(extra map[string]float64) *Scorer {
	lex := make(map[string]float64, len(baseLexicon)+len(extra))
	for w, v := range baseLexicon {
		lex[w] = v
	}
	for w, v := range extra {
		lex[strings.ToLower(strings.TrimSpace(w))] = v
	}
	return &Scorer{lexicon: lex}
}

// Score returns the sentiment of text together with the number of usable
// tokens it was computed from. The score is the mean lexicon weight across
// usable tokens; unknown tokens contribute zero weight. A token count of zero
// means the text could not be scored and must be treated as disqualifying by
// callers.
func (s *Scorer) Score(text string) (float64, int) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, 0
	}

	var sum float64
	for _, tok := range tokens {
		sum += s.lexicon[tok]
	}
	return sum / float64(len(tokens)), len(tokens)
}

// tokenize lowercases the text, splits on anything that is not a letter, and
// reduces simple inflections so "mooning" and "dumped" hit their base forms.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := normalize(f)
		if len(tok) < 2 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// normalize applies a deliberately small stemmer. It only has to fold the
// inflections that show up in short hype posts, not general English.
func normalize(tok string) string {
	switch {
	case len(tok) > 5 && strings.HasSuffix(tok, "ing"):
		return tok[:len(tok)-3]
	case len(tok) > 4 && strings.HasSuffix(tok, "ed"):
		return tok[:len(tok)-2]
	case len(tok) > 3 && strings.HasSuffix(tok, "s") &&
		!strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us"):
		return tok[:len(tok)-1]
	default:
		return tok
	}
}
