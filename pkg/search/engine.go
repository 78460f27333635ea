package search

import (
	"context"
	"log"
	"sort"
	"time"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/internal/repository/specification"
	"ai-studymate-be/pkg/embedding"
	"ai-studymate-be/pkg/resilience"

	"github.com/google/uuid"
)

// MatchType records which retrieval branch produced a result.
type MatchType string

const (
	MatchSemantic MatchType = "semantic"
	MatchKeyword  MatchType = "keyword"
	MatchBoth     MatchType = "both"
)

// Result is one ranked chunk. Score is always in [0,1].
type Result struct {
	Chunk         *entity.ContentChunk
	Score         float64
	SemanticScore float64
	KeywordScore  float64
	MatchType     MatchType
}

// Output carries the ranked results plus the degraded flag set when the
// embedding service was unavailable and only the keyword branch ran.
type Output struct {
	Results  []Result
	Degraded bool
}

// Filters narrows a search to a subset of the user's corpus.
type Filters struct {
	DocumentIds  []uuid.UUID
	Topics       []string
	MinRelevance float64
}

// Config encapsulates fusion parameters. The defaults keep semantic dominance
// and the dual-match bonus; deployments may tune the weights.
type Config struct {
	SemanticWeight float64
	KeywordWeight  float64
	DualMatchBonus float64
	TopK           int
	EmbedTimeout   time.Duration
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		SemanticWeight: 0.7,
		KeywordWeight:  0.3,
		DualMatchBonus: 0.1,
		TopK:           10,
		EmbedTimeout:   10 * time.Second,
	}
}

// Engine combines vector similarity and keyword matching over a user's
// indexed chunks into a single ranked relevance list.
type Engine struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
	config            Config
}

// NewEngine creates a new hybrid search engine
func NewEngine(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger, config Config) *Engine {
	return &Engine{
		embeddingProvider: embeddingProvider,
		logger:            logger,
		config:            config,
	}
}

// Search runs both retrieval branches and fuses their scores. An embedding
// service failure degrades to keyword-only results instead of failing the
// search; an empty index yields an empty result, not an error.
func (e *Engine) Search(
	ctx context.Context,
	chunks contract.ContentChunkRepository,
	userId uuid.UUID,
	query string,
	filters Filters,
	maxResults int,
) (*Output, error) {

	if maxResults <= 0 {
		maxResults = 5
	}

	semantic, degraded, err := e.semanticBranch(ctx, chunks, userId, query, filters)
	if err != nil {
		return nil, err
	}

	keyword := e.keywordBranch(ctx, chunks, userId, query, filters)

	results := e.fuse(semantic, keyword, degraded)

	// Drop anything below the relevance floor, then truncate.
	filtered := results[:0]
	for _, r := range results {
		if r.Score >= filters.MinRelevance {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}

	e.logger.Printf("[SEARCH] query=%q semantic=%d keyword=%d fused=%d degraded=%v",
		truncate(query, 50), len(semantic), len(keyword), len(filtered), degraded)

	return &Output{Results: filtered, Degraded: degraded}, nil
}

type scoredChunk struct {
	chunk *entity.ContentChunk
	score float64
}

// semanticBranch embeds the query and runs the pgvector cosine search. On
// embedding failure it reports degraded=true so the keyword branch can carry
// the result alone; a cancelled parent context is propagated instead.
func (e *Engine) semanticBranch(
	ctx context.Context,
	chunks contract.ContentChunkRepository,
	userId uuid.UUID,
	query string,
	filters Filters,
) ([]scoredChunk, bool, error) {

	embeddingRes, err := resilience.Call(ctx, e.config.EmbedTimeout,
		resilience.ErrEmbeddingUnavailable, resilience.ErrEmbeddingUnavailable,
		func(cctx context.Context) (*embedding.EmbeddingResponse, error) {
			return e.embeddingProvider.Generate(cctx, query, "RETRIEVAL_QUERY")
		})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		e.logger.Printf("[WARN] Embedding generation failed, degrading to keyword-only: %v", err)
		return nil, true, nil
	}

	scored, err := chunks.SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		e.config.TopK,
		userId,
		contract.ChunkFilter{DocumentIds: filters.DocumentIds, Topics: filters.Topics},
		0.0,
	)
	if err != nil {
		e.logger.Printf("[WARN] Vector search failed, degrading to keyword-only: %v", err)
		return nil, true, nil
	}

	results := make([]scoredChunk, 0, len(scored))
	for _, s := range scored {
		results = append(results, scoredChunk{chunk: s.Chunk, score: clamp01(s.Similarity)})
	}
	return results, false, nil
}

// keywordBranch scores the user's candidate chunks by term overlap. A query
// with zero surviving tokens contributes nothing; the semantic branch still
// runs, so both branches are never skipped together.
func (e *Engine) keywordBranch(
	ctx context.Context,
	chunks contract.ContentChunkRepository,
	userId uuid.UUID,
	query string,
	filters Filters,
) []scoredChunk {

	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByDocumentIDs{DocumentIDs: filters.DocumentIds},
		specification.ByTopics{Topics: filters.Topics},
	}
	candidates, err := chunks.FindAll(ctx, specs...)
	if err != nil {
		e.logger.Printf("[WARN] Keyword candidate scan failed: %v", err)
		return nil
	}

	var results []scoredChunk
	for _, c := range candidates {
		if score := keywordScore(tokens, c.Text); score > 0 {
			results = append(results, scoredChunk{chunk: c, score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > e.config.TopK {
		results = results[:e.config.TopK]
	}
	return results
}

// fuse merges the two branches: chunks in one branch score
// semanticWeight*sem + keywordWeight*kw (the missing branch contributing 0);
// chunks in both get an additive bonus, capped at 1.0. In degraded mode the
// keyword score stands alone so ranking is not depressed by a dead branch.
func (e *Engine) fuse(semantic, keyword []scoredChunk, degraded bool) []Result {
	merged := make(map[uuid.UUID]*Result)

	for _, s := range semantic {
		merged[s.chunk.Id] = &Result{
			Chunk:         s.chunk,
			SemanticScore: s.score,
			MatchType:     MatchSemantic,
		}
	}
	for _, k := range keyword {
		if r, ok := merged[k.chunk.Id]; ok {
			r.KeywordScore = k.score
			r.MatchType = MatchBoth
		} else {
			merged[k.chunk.Id] = &Result{
				Chunk:        k.chunk,
				KeywordScore: k.score,
				MatchType:    MatchKeyword,
			}
		}
	}

	results := make([]Result, 0, len(merged))
	for _, r := range merged {
		switch {
		case degraded:
			r.Score = r.KeywordScore
		case r.MatchType == MatchBoth:
			r.Score = clamp01(e.config.SemanticWeight*r.SemanticScore +
				e.config.KeywordWeight*r.KeywordScore +
				e.config.DualMatchBonus)
		default:
			r.Score = clamp01(e.config.SemanticWeight*r.SemanticScore +
				e.config.KeywordWeight*r.KeywordScore)
		}
		results = append(results, *r)
	}

	// Equal final scores break on raw semantic score, then on most recently
	// indexed chunk.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].SemanticScore != results[j].SemanticScore {
			return results[i].SemanticScore > results[j].SemanticScore
		}
		return results[i].Chunk.CreatedAt.After(results[j].Chunk.CreatedAt)
	})

	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
