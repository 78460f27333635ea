package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDim is the fixed embedding dimension for this deployment.
// Chunks carrying a vector of any other length are rejected at index time.
const EmbeddingDim = 768

type ContentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Text       string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	Topic      string          `gorm:"type:varchar(128);index"`
	Difficulty string          `gorm:"type:varchar(32)"`
	Keywords   string          `gorm:"type:text"` // comma-separated
	Page       *int
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (ContentChunk) TableName() string {
	return "content_chunks"
}
