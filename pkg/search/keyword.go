package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it on non-alphanumeric runes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// QueryTokens tokenizes a query and strips stop words.
func QueryTokens(query string) []string {
	var tokens []string
	for _, tok := range Tokenize(query) {
		if !isStopWord(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// keywordScore is the term frequency of the surviving query tokens in the
// chunk text, normalized by chunk length. Always in [0,1].
func keywordScore(queryTokens []string, chunkText string) float64 {
	chunkTokens := Tokenize(chunkText)
	if len(chunkTokens) == 0 || len(queryTokens) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		wanted[t] = struct{}{}
	}

	matched := 0
	for _, t := range chunkTokens {
		if _, ok := wanted[t]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(chunkTokens))
}
