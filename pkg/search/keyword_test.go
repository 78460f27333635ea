package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryTokens_StripsStopWords(t *testing.T) {
	tokens := QueryTokens("What is the difference between stacks and queues?")
	assert.Equal(t, []string{"difference", "between", "stacks", "queues"}, tokens)
}

func TestQueryTokens_AllStopWordsYieldsEmpty(t *testing.T) {
	assert.Empty(t, QueryTokens("what is it"))
}

func TestTokenize_SplitsOnNonAlphanumeric(t *testing.T) {
	assert.Equal(t, []string{"tcp", "ip", "layer", "4"}, Tokenize("TCP/IP (layer-4)"))
}

func TestKeywordScore_FullMatch(t *testing.T) {
	score := keywordScore([]string{"gradient", "descent"}, "gradient descent")
	assert.Equal(t, 1.0, score)
}

func TestKeywordScore_NoMatch(t *testing.T) {
	score := keywordScore([]string{"gradient"}, "completely unrelated text")
	assert.Zero(t, score)
}

func TestKeywordScore_NormalizedByChunkLength(t *testing.T) {
	score := keywordScore([]string{"recall"}, "active recall beats passive review")
	assert.InDelta(t, 0.2, score, 1e-9)
}

func TestParseQuery_ExtractsTopicFilters(t *testing.T) {
	parsed := ParseQuery("explain eigenvalues /topic:linear-algebra /in:math")
	assert.Equal(t, []string{"linear-algebra", "math"}, parsed.Topics)
	assert.Equal(t, "explain eigenvalues", parsed.SearchQuery)
}

func TestParseQuery_PlainQueryPassesThrough(t *testing.T) {
	parsed := ParseQuery("explain eigenvalues")
	assert.Empty(t, parsed.Topics)
	assert.Equal(t, "explain eigenvalues", parsed.SearchQuery)
}
