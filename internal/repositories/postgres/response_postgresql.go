package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) CreateBatch(ctx context.Context, responses []*models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(responses, 100).Error; err != nil {
		return fmt.Errorf("failed to create responses: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, id string) (*models.Response, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("id = ?", id).
		First(&response).Error
	if err != nil {
		return nil, wrapNotFound(err, "response")
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error) {
	var responses []*models.Response
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) UpdateGrade(ctx context.Context, id string, isCorrect *bool, score *int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_correct": isCorrect, "score": score})
	if err := requireAffected(result, "response"); err != nil {
		return fmt.Errorf("failed to grade response: %w", err)
	}
	return nil
}

// SumScores totals awarded scores and question marks; the inner join drops responses whose question was deleted
func (r *ResponsePostgreSQL) SumScores(ctx context.Context, sessionID string) (repositories.ScoreTotals, error) {
	var totals repositories.ScoreTotals
	err := r.db.WithContext(ctx).
		Table("assessment_responses AS r").
		Select("COALESCE(SUM(COALESCE(r.score, 0)), 0) AS awarded, COALESCE(SUM(q.marks), 0) AS possible").
		Joins("JOIN questions AS q ON q.id = r.question_id").
		Where("r.session_id = ?", sessionID).
		Scan(&totals).Error
	if err != nil {
		return repositories.ScoreTotals{}, fmt.Errorf("failed to sum scores: %w", err)
	}
	return totals, nil
}
