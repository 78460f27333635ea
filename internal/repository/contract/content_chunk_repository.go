package contract

import (
	"context"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContentChunk pairs a chunk with its cosine similarity to a query
// embedding. Similarity is already normalized to [0,1] by the repository.
type ScoredContentChunk struct {
	Chunk      *entity.ContentChunk
	Similarity float64
}

// ChunkFilter narrows a similarity search to a subset of the user's corpus.
type ChunkFilter struct {
	DocumentIds []uuid.UUID
	Topics      []string
}

type ContentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.ContentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore runs a pgvector cosine search scoped to the
	// user's own chunks, returning similarity scores above threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, filter ChunkFilter, threshold float64) ([]*ScoredContentChunk, error)
}
