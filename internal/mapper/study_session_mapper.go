package mapper

import (
	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/model"
)

type StudySessionMapper struct{}

func NewStudySessionMapper() *StudySessionMapper {
	return &StudySessionMapper{}
}

func (m *StudySessionMapper) ToEntity(s *model.StudySession) *entity.StudySession {
	if s == nil {
		return nil
	}
	return &entity.StudySession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Mode:      s.Mode,
		Language:  s.Language,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *StudySessionMapper) ToModel(s *entity.StudySession) *model.StudySession {
	if s == nil {
		return nil
	}
	return &model.StudySession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Mode:      s.Mode,
		Language:  s.Language,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type ConversationTurnMapper struct{}

func NewConversationTurnMapper() *ConversationTurnMapper {
	return &ConversationTurnMapper{}
}

func (m *ConversationTurnMapper) ToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	return &entity.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ConversationTurnMapper) ToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	return &model.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}
