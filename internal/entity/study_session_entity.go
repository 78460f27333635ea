package entity

import (
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Mode      string
	Language  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ConversationTurn is one persisted message of a study session. Turns are
// appended only after a pipeline run finishes so their order reflects the
// chronological order of completed turns.
type ConversationTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Text      string
	CreatedAt time.Time
}
