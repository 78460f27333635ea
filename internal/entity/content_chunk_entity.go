package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentChunk is a unit of previously ingested document text with its
// embedding. Chunks are produced by the ingestion collaborator and are
// read-only to the answer pipeline.
type ContentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	UserId     uuid.UUID
	Text       string
	Embedding  []float32
	Topic      string
	Difficulty string
	Keywords   []string
	Page       *int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
