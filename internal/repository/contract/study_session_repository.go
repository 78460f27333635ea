package contract

import (
	"context"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StudySessionRepository interface {
	Create(ctx context.Context, session *entity.StudySession) error
	Update(ctx context.Context, session *entity.StudySession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error)
}

type ConversationTurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	CreateBulk(ctx context.Context, turns []*entity.ConversationTurn) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
