// Package sentiment scores English review text against a small polarity lexicon.
//
// Text is split into lower-cased word tokens. Each token found in the lexicon
// contributes its weight (-5..+5); a negator ("not", "never", ...) directly
// before a lexicon word flips that word's sign. The aggregate Score is the mean
// weight of the matched words scaled into [-1, +1], and 0 when nothing matched.
//
// All functions are safe for concurrent use.
package sentiment

import (
	"fmt"
	"strings"
	"unicode"
)

// maxWeight is the largest absolute lexicon weight, used to scale Score into [-1, 1].
const maxWeight = 5

// Result holds the scoring output for one text.
type Result struct {
	Score    float64 `json:"score"`    // -1.0 to +1.0
	Positive int     `json:"positive"` // matched words with positive weight after negation
	Negative int     `json:"negative"` // matched words with negative weight after negation
	Words    int     `json:"words"`    // all word tokens, matched or not
}

func (r Result) String() string {
	return fmt.Sprintf("score=%.3f pos=%d neg=%d words=%d", r.Score, r.Positive, r.Negative, r.Words)
}

// Analyze scores text.
func Analyze(text string) Result {
	tokens := Tokenize(text)
	res := Result{Words: len(tokens)}
	sum, matched := 0, 0
	negate := false
	for _, tok := range tokens {
		if negators[tok] {
			negate = true
			continue
		}
		w, ok := lexicon[tok]
		if !ok {
			negate = false
			continue
		}
		if negate {
			w = -w
			negate = false
		}
		sum += w
		matched++
		if w > 0 {
			res.Positive++
		} else if w < 0 {
			res.Negative++
		}
	}
	if matched > 0 {
		res.Score = float64(sum) / float64(matched*maxWeight)
	}
	return res
}

// Score returns the aggregate sentiment score of text.
func Score(text string) float64 { return Analyze(text).Score }

// WordCount returns the number of word tokens in text.
func WordCount(text string) int { return len(Tokenize(text)) }

// Tokenize splits text into lower-cased tokens of letters, digits and inner apostrophes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’")
		if f == "" {
			continue
		}
		out = append(out, strings.ToLower(strings.ReplaceAll(f, "’", "'")))
	}
	return out
}
