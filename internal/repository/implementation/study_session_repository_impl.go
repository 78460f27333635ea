package implementation

import (
	"context"
	"errors"

	"ai-studymate-be/internal/entity"
	"ai-studymate-be/internal/mapper"
	"ai-studymate-be/internal/model"
	"ai-studymate-be/internal/repository/contract"
	"ai-studymate-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudySessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudySessionMapper
}

func NewStudySessionRepository(db *gorm.DB) contract.StudySessionRepository {
	return &StudySessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewStudySessionMapper(),
	}
}

func (r *StudySessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StudySessionRepositoryImpl) Create(ctx context.Context, session *entity.StudySession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *StudySessionRepositoryImpl) Update(ctx context.Context, session *entity.StudySession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *StudySessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.StudySession{}, id).Error
}

func (r *StudySessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error) {
	var m model.StudySession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StudySessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error) {
	var models []*model.StudySession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	sessions := make([]*entity.StudySession, len(models))
	for i, m := range models {
		sessions[i] = r.mapper.ToEntity(m)
	}
	return sessions, nil
}
