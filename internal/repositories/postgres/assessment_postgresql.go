package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db}
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.Assessment) error {
	if err := a.db.WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error; err != nil {
		return nil, wrapNotFound(err, "assessment")
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	query := a.db.WithContext(ctx).Model(&models.Assessment{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by_id = ?", *filters.CreatedBy)
	}
	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}
	query = applySort(query, filters.SortBy)

	var assessments []*models.Assessment
	if err := query.Find(&assessments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

// Update saves every column of the assessment
func (a *AssessmentPostgreSQL) Update(ctx context.Context, assessment *models.Assessment) error {
	result := a.db.WithContext(ctx).Model(assessment).Select("*").Omit("created_at", "created_by_id").Updates(assessment)
	if err := requireAffected(result, "assessment"); err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	return nil
}

// Delete removes responses, sessions, questions and the assessment in one transaction
func (a *AssessmentPostgreSQL) Delete(ctx context.Context, id string) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessionIDs := tx.Model(&models.Session{}).Select("id").Where("assessment_id = ?", id)

		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.Response{}).Error; err != nil {
			return fmt.Errorf("failed to delete responses: %w", err)
		}
		if err := tx.Where("assessment_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		if err := tx.Where("assessment_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Assessment{})
		if err := requireAffected(result, "assessment"); err != nil {
			return fmt.Errorf("failed to delete assessment: %w", err)
		}
		return nil
	})
}
