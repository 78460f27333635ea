package assistant

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/internal/repository/specification"
	"ai-studymate-be/pkg/embedding"
	"ai-studymate-be/pkg/llm"
	"ai-studymate-be/pkg/persona"
	"ai-studymate-be/pkg/respcache"
	"ai-studymate-be/pkg/resilience"
	"ai-studymate-be/pkg/routing"
	"ai-studymate-be/pkg/search"
	"ai-studymate-be/pkg/store"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: make([]float32, 768)},
	}, nil
}

type failingEmbedder struct{}

func (f *failingEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	return nil, errors.New("embedding service down")
}

type fakeChunkRepo struct {
	chunks  []*entity.ContentChunk
	similar []*contract.ScoredContentChunk
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
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	return f.chunks, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}
func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, userId uuid.UUID, filter contract.ChunkFilter, threshold float64) ([]*contract.ScoredContentChunk, error) {
	return f.similar, nil
}

type fakeLLM struct {
	response string
	err      error
	calls    int
	onCall   func()
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall()
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type fixture struct {
	assembler *Assembler
	llm       *fakeLLM
	cache     *respcache.Cache
	health    *resilience.HealthTracker
	session   *store.Session
}

func newFixture(t *testing.T, repo *fakeChunkRepo, provider *fakeLLM) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	cache := respcache.New(respcache.NewMemoryStore(), logger)
	health := resilience.NewHealthTracker(3)
	engine := search.NewEngine(&fakeEmbedder{}, logger, search.DefaultConfig())

	a := NewAssembler(engine, repo, cache, persona.NewController(), provider, health, logger, DefaultConfig())
	return &fixture{
		assembler: a,
		llm:       provider,
		cache:     cache,
		health:    health,
		session: &store.Session{
			ID:       uuid.NewString(),
			UserID:   uuid.NewString(),
			Mode:     string(persona.ModeTutor),
			Language: "en",
		},
	}
}

func groundedRepo() *fakeChunkRepo {
	chunk := &entity.ContentChunk{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Text:      "Gradient descent iteratively updates parameters against the gradient.",
		Topic:     "optimization",
		CreatedAt: time.Now(),
	}
	return &fakeChunkRepo{
		chunks:  []*entity.ContentChunk{chunk},
		similar: []*contract.ScoredContentChunk{{Chunk: chunk, Similarity: 0.85}},
	}
}

func TestAnswer_GroundedQueryReturnsSourcedResponse(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "Gradient descent moves downhill [1]."})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "what is gradient descent",
	})

	require.NoError(t, err)
	assert.Equal(t, "Gradient descent moves downhill [1].", res.Text)
	assert.Equal(t, persona.ModeTutor, res.Mode)
	assert.InDelta(t, 0.85, res.Confidence, 0.1)
	assert.Len(t, res.Sources, 1)
	assert.False(t, res.Cached)
	assert.False(t, res.Degraded)
}

func TestAnswer_NoMatchingMaterialYieldsZeroConfidence(t *testing.T) {
	f := newFixture(t, &fakeChunkRepo{}, &fakeLLM{response: "In general terms..."})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "summarize the french revolution",
	})

	require.NoError(t, err)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Sources)
	assert.True(t, strings.HasPrefix(res.Text, NotGroundedNotice))
}

func TestAnswer_UngroundedResponsesAreNotCached(t *testing.T) {
	f := newFixture(t, &fakeChunkRepo{}, &fakeLLM{response: "general answer"})

	_, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "anything at all"})
	require.NoError(t, err)

	res, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "anything at all"})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, f.llm.calls)
}

func TestAnswer_IdenticalQueryHitsCacheSecondTime(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "First answer."})

	first, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "what is gradient descent",
	})
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "What is   gradient descent", // same fingerprint after normalization
	})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, 1, f.llm.calls)
}

func TestAnswer_CacheIsScopedPerMode(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "answer"})

	_, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "gradient descent"})
	require.NoError(t, err)

	f.session.Mode = string(persona.ModeInterviewer)
	res, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "gradient descent"})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, f.llm.calls)
}

func TestAnswer_ModeSwitchIsAppliedBeforeGeneration(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "Let's drill."})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session:       f.session,
		Query:         "quiz me on sorting",
		RequestedMode: "interviewer",
	})

	require.NoError(t, err)
	assert.Equal(t, persona.ModeInterviewer, res.Mode)
	assert.Contains(t, res.ModeMessage, "Switched to interviewer mode")
}

func TestAnswer_UnknownModeAsksForClarificationWithoutGenerating(t *testing.T) {
	f := newFixture(t, groundedRepo(), &fakeLLM{response: "should not run"})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session:       f.session,
		Query:         "switch please",
		RequestedMode: "drill sergeant",
	})

	require.NoError(t, err)
	assert.True(t, res.Clarification)
	assert.Equal(t, persona.ModeTutor, res.Mode)
	assert.Zero(t, f.llm.calls)
}

func TestAnswer_GenerationFailureFallsBackToSimilarCachedAnswer(t *testing.T) {
	repo := groundedRepo()
	provider := &fakeLLM{response: "The cached original."}
	f := newFixture(t, repo, provider)

	_, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "explain gradient descent convergence",
	})
	require.NoError(t, err)

	provider.err = errors.New("model crashed")
	res, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "explain gradient descent convergence rate",
	})

	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.True(t, res.Degraded)
	assert.True(t, strings.HasPrefix(res.Text, StaleFallbackNotice))
	assert.Contains(t, res.Text, "The cached original.")
	assert.InDelta(t, 0.85*0.5, res.Confidence, 0.1)
}

func TestAnswer_GenerationFailureWithoutFallbackIsRetryable(t *testing.T) {
	f := newFixture(t, groundedRepo(), &fakeLLM{err: errors.New("model crashed")})

	_, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "explain gradient descent",
	})

	assert.ErrorIs(t, err, resilience.ErrGenerationUnavailable)
}

func TestAnswer_OpenCircuitSkipsProviderCall(t *testing.T) {
	f := newFixture(t, groundedRepo(), &fakeLLM{response: "should not run"})
	for i := 0; i < 3; i++ {
		f.health.Failure("generation")
	}

	_, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "explain gradient descent",
	})

	assert.ErrorIs(t, err, resilience.ErrGenerationUnavailable)
	assert.Zero(t, f.llm.calls)
}

func TestAnswer_CircuitRecoversOnceProviderIsHealthy(t *testing.T) {
	now := time.Now()
	provider := &fakeLLM{err: errors.New("model crashed")}
	f := newFixture(t, groundedRepo(), provider)
	f.health.WithCooldown(time.Minute).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		_, err := f.assembler.Answer(context.Background(), Input{
			Session: f.session,
			Query:   "explain gradient descent",
		})
		require.ErrorIs(t, err, resilience.ErrGenerationUnavailable)
	}
	require.Equal(t, 3, provider.calls)

	// Inside the cooldown the circuit stays open and skipped calls are not
	// counted as further failures.
	_, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "explain gradient descent"})
	require.ErrorIs(t, err, resilience.ErrGenerationUnavailable)
	require.Equal(t, 3, provider.calls)

	provider.err = nil
	provider.response = "recovered"
	now = now.Add(2 * time.Minute)

	res, err := f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "explain gradient descent"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, 4, provider.calls)

	// The successful trial call closed the circuit for good.
	res, err = f.assembler.Answer(context.Background(), Input{Session: f.session, Query: "explain momentum"})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 5, provider.calls)
}

func TestAnswer_DegradedFlagSurvivesCacheReplay(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	cache := respcache.New(respcache.NewMemoryStore(), logger)
	engine := search.NewEngine(&failingEmbedder{}, logger, search.DefaultConfig())
	provider := &fakeLLM{response: "keyword-only answer"}
	a := NewAssembler(engine, groundedRepo(), cache, persona.NewController(), provider,
		resilience.NewHealthTracker(3), logger, DefaultConfig())
	session := &store.Session{
		ID:       uuid.NewString(),
		UserID:   uuid.NewString(),
		Mode:     string(persona.ModeTutor),
		Language: "en",
	}

	first, err := a.Answer(context.Background(), Input{Session: session, Query: "gradient descent parameters"})
	require.NoError(t, err)
	require.True(t, first.Degraded)
	require.False(t, first.Cached)

	second, err := a.Answer(context.Background(), Input{Session: session, Query: "gradient descent parameters"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, second.Degraded)
	assert.Equal(t, 1, provider.calls)
}

func TestAnswer_CancelledRequestWritesNothingToCache(t *testing.T) {
	repo := groundedRepo()
	ctx, cancel := context.WithCancel(context.Background())
	provider := &fakeLLM{onCall: cancel}
	f := newFixture(t, repo, provider)

	_, err := f.assembler.Answer(ctx, Input{
		Session: f.session,
		Query:   "what is gradient descent",
	})
	require.Error(t, err)

	key := respcache.Key("what is gradient descent", f.session.UserID, f.session.Mode, f.session.Language)
	_, found := f.cache.Get(context.Background(), key)
	assert.False(t, found)
}

func TestAnswer_ComplexQueryRoutesToDeepTier(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "deep analysis"})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query: "compare and contrast quicksort versus mergesort, analyze the " +
			"trade-off in memory usage, and explain why one wins step by step",
		History: make([]llm.Message, 8),
	})

	require.NoError(t, err)
	assert.Equal(t, routing.TierDeep, res.Tier)
	assert.GreaterOrEqual(t, res.ComplexityScore, routing.DefaultThreshold)
}

func TestAnswer_SimpleQueryRoutesToFastTier(t *testing.T) {
	repo := groundedRepo()
	f := newFixture(t, repo, &fakeLLM{response: "quick answer"})

	res, err := f.assembler.Answer(context.Background(), Input{
		Session: f.session,
		Query:   "define recursion",
	})

	require.NoError(t, err)
	assert.Equal(t, routing.TierFast, res.Tier)
}
