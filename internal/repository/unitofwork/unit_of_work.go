package unitofwork

import (
	"context"

	"ai-studymate-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContentChunkRepository() contract.ContentChunkRepository
	StudySessionRepository() contract.StudySessionRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
}
