package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		return nil, wrapNotFound(err, "question")
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("created_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	result := q.db.WithContext(ctx).Model(question).
		Select("*").
		Omit("created_at", "assessment_id", "question_type").
		Updates(question)
	if err := requireAffected(result, "question"); err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// Delete removes the question; responses that referenced it are kept and fall out of score sums
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{})
	if err := requireAffected(result, "question"); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}
