package resilience

import "errors"

// Failure taxonomy for the external collaborators. Infrastructure-adjacent
// failures (embedding, cache) are absorbed locally; generation failures run
// through the fallback chain before reaching the user.
var (
	ErrEmbeddingUnavailable  = errors.New("embedding service unavailable")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationTimeout     = errors.New("generation service timed out")
	ErrCacheUnavailable      = errors.New("cache store unavailable")
)
