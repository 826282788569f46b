package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

func requireCaller(caller *models.Principal) error {
	if caller == nil || caller.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

func requireInstructor(caller *models.Principal, resourceID, resource, action string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsInstructor() {
		return NewPermissionError(caller.UserID, resourceID, resource, action, "instructor role required")
	}
	return nil
}

// getAssessment maps a repository miss to ErrAssessmentNotFound
func getAssessment(ctx context.Context, repo repositories.Repository, id string) (*models.Assessment, error) {
	assessment, err := repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

// getOwnedAssessment loads an assessment the caller created
func getOwnedAssessment(ctx context.Context, repo repositories.Repository, id string, caller *models.Principal, action string) (*models.Assessment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	assessment, err := getAssessment(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !assessment.IsOwnedBy(caller.UserID) {
		return nil, NewPermissionError(caller.UserID, id, "assessment", action, "not owner")
	}
	return assessment, nil
}

// getPublishedAssessment hides unpublished assessments behind ErrAssessmentNotFound
func getPublishedAssessment(ctx context.Context, repo repositories.Repository, id string) (*models.Assessment, error) {
	assessment, err := getAssessment(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !assessment.IsPublished {
		return nil, ErrAssessmentNotFound
	}
	return assessment, nil
}

func (s *assessmentService) applyUpdates(assessment *models.Assessment, req *validator.AssessmentUpdateRequest) {
	if req.Title != nil {
		assessment.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		assessment.Description = req.Description
	}
	if req.AssessmentType != nil {
		assessment.AssessmentType = *req.AssessmentType
	}
	if req.QuestionFormat != nil {
		assessment.QuestionFormat = datatypes.JSONSlice[models.QuestionFormat](req.QuestionFormat.QuestionFormats())
	}
	if req.InclusivityMode != nil {
		assessment.InclusivityMode = *req.InclusivityMode
	}
	if req.IsPublished != nil {
		assessment.IsPublished = *req.IsPublished
	}
	if req.CourseID != nil {
		assessment.CourseID = req.CourseID
	}
}
