package mapper

import (
	"strings"
	"time"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentChunkMapper struct{}

func NewContentChunkMapper() *ContentChunkMapper {
	return &ContentChunkMapper{}
}

func (m *ContentChunkMapper) ToEntity(c *model.ContentChunk) *entity.ContentChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var keywords []string
	if c.Keywords != "" {
		keywords = strings.Split(c.Keywords, ",")
	}

	return &entity.ContentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		UserId:     c.UserId,
		Text:       c.Text,
		Embedding:  c.Embedding.Slice(),
		Topic:      c.Topic,
		Difficulty: c.Difficulty,
		Keywords:   keywords,
		Page:       c.Page,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  c.DeletedAt.Valid,
	}
}

func (m *ContentChunkMapper) ToModel(c *entity.ContentChunk) *model.ContentChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.ContentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		UserId:     c.UserId,
		Text:       c.Text,
		Embedding:  pgvector.NewVector(c.Embedding),
		Topic:      c.Topic,
		Difficulty: c.Difficulty,
		Keywords:   strings.Join(c.Keywords, ","),
		Page:       c.Page,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *ContentChunkMapper) ToEntities(chunks []*model.ContentChunk) []*entity.ContentChunk {
	entities := make([]*entity.ContentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
