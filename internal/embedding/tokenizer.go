package embedding

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of two or more word characters.
// Single-character tokens ("3" in "3.5years", "C") are dropped.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Analyzer splits text into lowercase word n-grams.
type Analyzer struct {
	NgramMin int
	NgramMax int
}

// NewAnalyzer returns an analyzer for n-grams in [min, max]. Out-of-range
// values fall back to unigrams.
func NewAnalyzer(ngramMin, ngramMax int) Analyzer {
	if ngramMin < 1 {
		ngramMin = 1
	}
	if ngramMax < ngramMin {
		ngramMax = ngramMin
	}
	return Analyzer{NgramMin: ngramMin, NgramMax: ngramMax}
}

// Terms returns the text's n-grams: all unigrams in order, then bigrams, and so on.
func (a Analyzer) Terms(text string) []string {
	return NGrams(SplitWords(text), a.NgramMin, a.NgramMax)
}

// SplitWords lowercases text and returns its word tokens in order.
func SplitWords(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// NGrams builds space-joined n-grams of lengths min..max from tokens.
func NGrams(tokens []string, min, max int) []string {
	if len(tokens) == 0 {
		return nil
	}
	var out []string
	for n := min; n <= max && n <= len(tokens); n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
