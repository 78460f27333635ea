package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=tutor interviewer mentor"`
	Language string `json:"language,omitempty"`
}

type CreateSessionResponse struct {
	Id   uuid.UUID `json:"id"`
	Mode string    `json:"mode"`
}

type GetHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type AnswerRequest struct {
	SessionId uuid.UUID   `json:"session_id" validate:"required"`
	Query     string      `json:"query" validate:"required,max=4000"`
	Mode      string      `json:"mode,omitempty"`
	Language  string      `json:"language,omitempty"`
	Documents []uuid.UUID `json:"documents,omitempty" validate:"max=20"`
	Topics    []string    `json:"topics,omitempty" validate:"max=10"`
}

// SourceDTO is one chunk the answer was grounded on
type SourceDTO struct {
	ChunkId uuid.UUID `json:"chunk_id"`
}

type AnswerResponse struct {
	SessionId       uuid.UUID   `json:"session_id"`
	SessionTitle    string      `json:"title"`
	Answer          string      `json:"answer"`
	Mode            string      `json:"mode"`
	ModeMessage     string      `json:"mode_message,omitempty"`
	ModelTier       string      `json:"model_tier,omitempty"`
	ComplexityScore float64     `json:"complexity_score"`
	Confidence      float64     `json:"confidence"`
	Sources         []SourceDTO `json:"sources,omitempty"`
	Cached          bool        `json:"cached"`
	Degraded        bool        `json:"degraded"`
	Clarification   bool        `json:"clarification,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

type ModeProfileResponse struct {
	Mode               string   `json:"mode"`
	Formality          float64  `json:"formality"`
	Directiveness      float64  `json:"directiveness"`
	Encouragement      float64  `json:"encouragement"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

// TurnCompletedMessage is the payload published on the internal event bus
// after each answered turn.
type TurnCompletedMessage struct {
	SessionId  uuid.UUID `json:"session_id"`
	UserId     uuid.UUID `json:"user_id"`
	Mode       string    `json:"mode"`
	ModelTier  string    `json:"model_tier"`
	Confidence float64   `json:"confidence"`
	Cached     bool      `json:"cached"`
	Degraded   bool      `json:"degraded"`
	AnsweredAt time.Time `json:"answered_at"`
}
