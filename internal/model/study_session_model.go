package model

import (
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255)"`
	Mode      string    `gorm:"type:varchar(32);default:'tutor'"`
	Language  string    `gorm:"type:varchar(16);default:'en'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time
}

func (StudySession) TableName() string {
	return "study_sessions"
}

type ConversationTurn struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Text      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
