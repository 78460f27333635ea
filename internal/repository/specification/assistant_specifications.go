package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserOwnedBy scopes a query to rows owned by a user
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// BySessionID filters conversation turns by their session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByDocumentIDs restricts chunks to a set of source documents
type ByDocumentIDs struct {
	DocumentIDs []uuid.UUID
}

func (s ByDocumentIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.DocumentIDs) == 0 {
		return db
	}
	return db.Where("document_id IN ?", s.DocumentIDs)
}

// ByTopics restricts chunks to a set of topics
type ByTopics struct {
	Topics []string
}

func (s ByTopics) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Topics) == 0 {
		return db
	}
	return db.Where("topic IN ?", s.Topics)
}
