package search

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/internal/repository/specification"
	"ai-studymate-be/pkg/embedding"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	delay  time.Duration
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

// fakeChunkRepo serves canned similarity results and scans chunks for the
// keyword branch.
type fakeChunkRepo struct {
	chunks    []*entity.ContentChunk
	similar   []*contract.ScoredContentChunk
	searchErr error
	findErr   error
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.ContentChunk) error { return nil }
func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error {
	return nil
}
func (f *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (f *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.chunks, nil
}
func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, userId uuid.UUID, filter contract.ChunkFilter, threshold float64) ([]*contract.ScoredContentChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.similar, nil
}

func testChunk(text string, age time.Duration) *entity.ContentChunk {
	return &entity.ContentChunk{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Text:      text,
		CreatedAt: time.Now().Add(-age),
	}
}

func newTestEngine(embedder embedding.EmbeddingProvider) *Engine {
	return NewEngine(embedder, log.New(io.Discard, "", 0), DefaultConfig())
}

func TestSearch_FusionPrefersStrongSemanticOverDualMatch(t *testing.T) {
	// A strong semantic-only match (0.7*0.9 = 0.63) should outrank a weak
	// semantic hit with a perfect keyword match plus the dual-match bonus
	// (0.7*0.3 + 0.3*1.0 + 0.1 = 0.61).
	deepDive := testChunk("optimization methods converge toward minima iteratively", 0)
	literal := testChunk("gradient descent", 0)

	repo := &fakeChunkRepo{
		chunks: []*entity.ContentChunk{deepDive, literal},
		similar: []*contract.ScoredContentChunk{
			{Chunk: deepDive, Similarity: 0.9},
			{Chunk: literal, Similarity: 0.3},
		},
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "what is gradient descent", Filters{}, 5)

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Degraded)

	assert.Equal(t, deepDive.Id, out.Results[0].Chunk.Id)
	assert.InDelta(t, 0.63, out.Results[0].Score, 1e-9)
	assert.Equal(t, MatchSemantic, out.Results[0].MatchType)

	assert.Equal(t, literal.Id, out.Results[1].Chunk.Id)
	assert.InDelta(t, 0.61, out.Results[1].Score, 1e-9)
	assert.Equal(t, MatchBoth, out.Results[1].MatchType)
}

func TestSearch_EmbeddingFailureDegradesToKeywordOnly(t *testing.T) {
	chunk := testChunk("gradient descent updates weights", 0)
	repo := &fakeChunkRepo{chunks: []*entity.ContentChunk{chunk}}
	engine := newTestEngine(&fakeEmbedder{err: errors.New("connection refused")})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "gradient descent", Filters{}, 5)

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	require.Len(t, out.Results, 1)
	assert.Equal(t, MatchKeyword, out.Results[0].MatchType)
	// Degraded scores are the raw keyword score, not weighted down.
	assert.InDelta(t, 0.5, out.Results[0].Score, 1e-9)
}

func TestSearch_VectorSearchFailureDegradesToKeywordOnly(t *testing.T) {
	chunk := testChunk("gradient descent", 0)
	repo := &fakeChunkRepo{
		chunks:    []*entity.ContentChunk{chunk},
		searchErr: errors.New("relation missing"),
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "gradient descent", Filters{}, 5)

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	require.Len(t, out.Results, 1)
}

func TestSearch_CancelledContextPropagates(t *testing.T) {
	repo := &fakeChunkRepo{}
	engine := newTestEngine(&fakeEmbedder{delay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, repo, uuid.New(), "anything", Filters{}, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_EmptyIndexYieldsEmptyResult(t *testing.T) {
	repo := &fakeChunkRepo{}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "gradient descent", Filters{}, 5)

	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.False(t, out.Degraded)
}

func TestSearch_StopWordOnlyQueryStillRunsSemanticBranch(t *testing.T) {
	chunk := testChunk("what it is about", 0)
	repo := &fakeChunkRepo{
		chunks:  []*entity.ContentChunk{chunk},
		similar: []*contract.ScoredContentChunk{{Chunk: chunk, Similarity: 0.8}},
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "what is it", Filters{}, 5)

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, MatchSemantic, out.Results[0].MatchType)
	assert.Zero(t, out.Results[0].KeywordScore)
}

func TestSearch_MinRelevanceDropsWeakResults(t *testing.T) {
	strong := testChunk("retrieval augmented generation pipeline", 0)
	weak := testChunk("unrelated grocery list", 0)
	repo := &fakeChunkRepo{
		chunks: []*entity.ContentChunk{strong, weak},
		similar: []*contract.ScoredContentChunk{
			{Chunk: strong, Similarity: 0.9},
			{Chunk: weak, Similarity: 0.1},
		},
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "retrieval pipeline", Filters{MinRelevance: 0.3}, 5)

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, strong.Id, out.Results[0].Chunk.Id)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	var chunks []*entity.ContentChunk
	var similar []*contract.ScoredContentChunk
	for i := 0; i < 8; i++ {
		c := testChunk("spaced repetition and active recall", time.Duration(i)*time.Minute)
		chunks = append(chunks, c)
		similar = append(similar, &contract.ScoredContentChunk{Chunk: c, Similarity: 0.9 - float64(i)*0.05})
	}
	repo := &fakeChunkRepo{chunks: chunks, similar: similar}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "spaced repetition", Filters{}, 3)

	require.NoError(t, err)
	assert.Len(t, out.Results, 3)
}

func TestSearch_TieBreaksOnSemanticScoreThenRecency(t *testing.T) {
	older := testChunk("distinct alpha text", time.Hour)
	newer := testChunk("distinct beta text", time.Minute)
	repo := &fakeChunkRepo{
		chunks: []*entity.ContentChunk{older, newer},
		similar: []*contract.ScoredContentChunk{
			{Chunk: older, Similarity: 0.6},
			{Chunk: newer, Similarity: 0.6},
		},
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "unrelatedquery", Filters{}, 5)

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, newer.Id, out.Results[0].Chunk.Id)
}

func TestSearch_ScoresAlwaysWithinBounds(t *testing.T) {
	chunk := testChunk("gradient descent gradient descent", 0)
	repo := &fakeChunkRepo{
		chunks:  []*entity.ContentChunk{chunk},
		similar: []*contract.ScoredContentChunk{{Chunk: chunk, Similarity: 1.0}},
	}
	engine := newTestEngine(&fakeEmbedder{vector: make([]float32, 768)})

	out, err := engine.Search(context.Background(), repo, uuid.New(), "gradient descent", Filters{}, 5)

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	// 0.7*1.0 + 0.3*1.0 + 0.1 would exceed 1.0 without the cap.
	assert.Equal(t, 1.0, out.Results[0].Score)
}
