package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.Session) error {
	// responses are written separately through CreateBatch
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, wrapNotFound(err, "session")
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetWithResponses(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.withResponses(s.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, wrapNotFound(err, "session")
	}
	return &session, nil
}

func (s *SessionPostgreSQL) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Session, error) {
	var sessions []*models.Session
	err := s.withResponses(s.db.WithContext(ctx)).
		Where("assessment_id = ?", assessmentID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) UpdateScore(ctx context.Context, id string, score int, status models.SessionStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"score": score, "status": status})
	if err := requireAffected(result, "session"); err != nil {
		return fmt.Errorf("failed to update session score: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) withResponses(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessment_responses.created_at ASC")
		}).
		Preload("Responses.Question")
}
