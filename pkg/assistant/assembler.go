package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/pkg/assistant/prompt"
	"ai-studymate-be/pkg/llm"
	"ai-studymate-be/pkg/persona"
	"ai-studymate-be/pkg/respcache"
	"ai-studymate-be/pkg/resilience"
	"ai-studymate-be/pkg/routing"
	"ai-studymate-be/pkg/search"
	"ai-studymate-be/pkg/store"
)

const generationService = "generation"

// Config encapsulates routing and generation parameters.
type Config struct {
	FastModel      string
	DeepModel      string
	RouteThreshold float64
	GenTimeout     time.Duration
	MaxResults     int
	CacheTTL       time.Duration
}

// DefaultConfig returns default assembler configuration
func DefaultConfig() Config {
	return Config{
		FastModel:      "gemma3:4b",
		DeepModel:      "gemma3:27b",
		RouteThreshold: routing.DefaultThreshold,
		GenTimeout:     60 * time.Second,
		MaxResults:     5,
		CacheTTL:       6 * time.Hour,
	}
}

// Input is one answer request flowing through the pipeline.
type Input struct {
	Session       *store.Session
	Query         string
	RequestedMode string
	History       []llm.Message
	Filters       search.Filters
}

// Result is the assembled answer plus the pipeline metadata the caller
// persists and reports.
type Result struct {
	Text            string
	Mode            persona.Mode
	ModeMessage     string
	Clarification   bool
	Tier            routing.Tier
	ComplexityScore float64
	Confidence      float64
	Sources         []uuid.UUID
	Cached          bool
	Degraded        bool
}

// Assembler orchestrates one conversation turn: persona resolution, cache
// lookup, hybrid retrieval, complexity routing, generation, and the fallback
// chain when generation is down.
type Assembler struct {
	engine      *search.Engine
	chunks      contract.ContentChunkRepository
	cache       *respcache.Cache
	modes       *persona.Controller
	llmProvider llm.LLMProvider
	health      *resilience.HealthTracker
	logger      *log.Logger
	config      Config
}

func NewAssembler(
	engine *search.Engine,
	chunks contract.ContentChunkRepository,
	cache *respcache.Cache,
	modes *persona.Controller,
	llmProvider llm.LLMProvider,
	health *resilience.HealthTracker,
	logger *log.Logger,
	config Config,
) *Assembler {
	return &Assembler{
		engine:      engine,
		chunks:      chunks,
		cache:       cache,
		modes:       modes,
		llmProvider: llmProvider,
		health:      health,
		logger:      logger,
		config:      config,
	}
}

// Answer runs the full pipeline for one turn. A cache hit short-circuits
// retrieval and generation. When generation is unavailable the nearest
// recently cached answer is served degraded; with no candidate the caller
// gets ErrGenerationUnavailable and should tell the user to retry.
func (a *Assembler) Answer(ctx context.Context, in Input) (*Result, error) {
	transition := a.modes.Resolve(persona.Mode(in.Session.Mode), in.RequestedMode)
	if transition.Clarification {
		return &Result{
			Text:          transition.Message,
			Mode:          transition.Mode,
			Clarification: true,
			Confidence:    1,
		}, nil
	}
	mode := transition.Mode
	profile, _ := persona.Lookup(mode)

	userScope := in.Session.UserID
	key := respcache.Key(in.Query, userScope, string(mode), in.Session.Language)
	if hit, found := a.cache.Get(ctx, key); found {
		a.logger.Printf("[ASSEMBLER] Cache hit for key %s", key[:12])
		return &Result{
			Text:            hit.ResponseText,
			Mode:            mode,
			ModeMessage:     transition.Message,
			Tier:            routing.Tier(hit.ModelTier),
			ComplexityScore: 0,
			Confidence:      hit.Confidence,
			Sources:         hit.Sources,
			Cached:          true,
			Degraded:        hit.Degraded,
		}, nil
	}

	userId, err := uuid.Parse(userScope)
	if err != nil {
		return nil, fmt.Errorf("invalid user scope: %w", err)
	}

	out, err := a.engine.Search(ctx, a.chunks, userId, in.Query, in.Filters, a.config.MaxResults)
	if err != nil {
		return nil, err
	}

	score := routing.Classify(in.Query, len(in.History))
	tier := routing.Route(score, a.config.RouteThreshold)
	model := a.config.FastModel
	if tier == routing.TierDeep {
		model = a.config.DeepModel
	}

	confidence := 0.0
	sources := make([]uuid.UUID, 0, len(out.Results))
	if len(out.Results) > 0 {
		confidence = out.Results[0].Score
		for _, r := range out.Results {
			sources = append(sources, r.Chunk.Id)
		}
	}

	text, err := a.generate(ctx, profile, in, out.Results, model)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return a.fallback(ctx, in, mode, transition.Message, userScope, err)
	}

	if len(out.Results) == 0 {
		text = NotGroundedNotice + text
	}

	result := &Result{
		Text:            text,
		Mode:            mode,
		ModeMessage:     transition.Message,
		Tier:            tier,
		ComplexityScore: score,
		Confidence:      confidence,
		Sources:         sources,
		Degraded:        out.Degraded,
	}

	// Ungrounded answers are not worth replaying; everything else is.
	if confidence > 0 && ctx.Err() == nil {
		a.cache.Put(ctx, userScope, in.Query, &respcache.CachedResponse{
			CacheKey:     key,
			ResponseText: result.Text,
			ModelTier:    string(tier),
			Sources:      sources,
			Confidence:   confidence,
			Degraded:     out.Degraded,
			TTLSeconds:   int(a.config.CacheTTL.Seconds()),
		})
	}

	return result, nil
}

func (a *Assembler) generate(ctx context.Context, profile persona.Profile, in Input, results []search.Result, model string) (string, error) {
	if !a.health.Available(generationService) {
		a.logger.Printf("[ASSEMBLER] Generation circuit open, skipping call")
		return "", resilience.ErrGenerationUnavailable
	}

	promptText := prompt.NewContextualBuilder(profile, in.Query, results).Build()
	messages := append(append([]llm.Message{}, in.History...), llm.Message{Role: "user", Content: promptText})

	text, err := resilience.Call(ctx, a.config.GenTimeout,
		resilience.ErrGenerationUnavailable, resilience.ErrGenerationTimeout,
		func(cctx context.Context) (string, error) {
			return a.llmProvider.Chat(cctx, messages, llm.WithModel(model))
		},
	)
	if err != nil {
		if ctx.Err() == nil {
			a.health.Failure(generationService)
		}
		return "", err
	}

	a.health.Success(generationService)
	return text, nil
}

func (a *Assembler) fallback(ctx context.Context, in Input, mode persona.Mode, modeMessage, userScope string, genErr error) (*Result, error) {
	a.logger.Printf("[ASSEMBLER] Generation failed, trying cached fallback: %v", genErr)

	if near, found := a.cache.FindSimilar(ctx, userScope, in.Query); found {
		return &Result{
			Text:        StaleFallbackNotice + near.ResponseText,
			Mode:        mode,
			ModeMessage: modeMessage,
			Tier:        routing.Tier(near.ModelTier),
			Confidence:  near.Confidence * 0.5,
			Sources:     near.Sources,
			Cached:      true,
			Degraded:    true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", resilience.ErrGenerationUnavailable, genErr)
}
