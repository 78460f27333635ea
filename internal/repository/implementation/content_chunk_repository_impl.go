package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/mapper"
	"ai-studymate-be/internal/model"
	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentChunkMapper
}

func NewContentChunkRepository(db *gorm.DB) contract.ContentChunkRepository {
	return &ContentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentChunkMapper(),
	}
}

func (r *ContentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// validateDimension rejects chunks whose embedding does not match the
// deployment's fixed dimension. Mismatched vectors are invalid at index time.
func validateDimension(chunk *entity.ContentChunk) error {
	if len(chunk.Embedding) != model.EmbeddingDim {
		return fmt.Errorf("invalid embedding dimension %d, expected %d", len(chunk.Embedding), model.EmbeddingDim)
	}
	return nil
}

func (r *ContentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.ContentChunk) error {
	if err := validateDimension(chunk); err != nil {
		return err
	}
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ContentChunk) error {
	models := make([]*model.ContentChunk, len(chunks))
	for i, c := range chunks {
		if err := validateDimension(c); err != nil {
			return err
		}
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ContentChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContentChunk{}, id).Error
}

func (r *ContentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ContentChunk{}).Error
}

func (r *ContentChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentChunk, error) {
	var m model.ContentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	var models []*model.ContentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ContentChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with cosine similarity scores above
// threshold, scoped to the user's own content. pgvector's `<=>` operator is
// cosine distance, so similarity = 1 - distance.
func (r *ContentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, filter contract.ChunkFilter, threshold float64) ([]*contract.ScoredContentChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.ContentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("content_chunks").
		Select("content_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId).
		Where("deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)

	if len(filter.DocumentIds) > 0 {
		query = query.Where("document_id IN ?", filter.DocumentIds)
	}
	if len(filter.Topics) > 0 {
		query = query.Where("topic IN ?", filter.Topics)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredContentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredContentChunk{
			Chunk:      r.mapper.ToEntity(&res.ContentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
