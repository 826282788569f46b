package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

type assessmentService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssessmentService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *validator.AssessmentCreateRequest, caller *models.Principal) (*models.Assessment, error) {
	if err := requireInstructor(caller, "", "assessment", "create"); err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateAssessmentCreate(req); len(errors) > 0 {
		return nil, errors
	}

	s.logger.Info("Creating assessment", "creator_id", caller.UserID, "title", req.Title)

	assessment := &models.Assessment{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		AssessmentType: models.AssessmentOnline,
		QuestionFormat: datatypes.JSONSlice[models.QuestionFormat](req.QuestionFormat.QuestionFormats()),
		CourseID:       req.CourseID,
		CreatedByID:    caller.UserID,
	}
	if req.AssessmentType != nil {
		assessment.AssessmentType = *req.AssessmentType
	}
	if req.InclusivityMode != nil {
		assessment.InclusivityMode = *req.InclusivityMode
	}

	if err := s.repo.Assessment().Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("Assessment created successfully", "assessment_id", assessment.ID)
	events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.AssessmentCreated, caller.UserID, map[string]interface{}{
		"assessment_id": assessment.ID,
		"title":         assessment.Title,
	}))

	return assessment, nil
}

func (s *assessmentService) List(ctx context.Context, caller *models.Principal) ([]*models.Assessment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	filters := repositories.AssessmentFilters{SortBy: "created_at"}
	if caller.IsInstructor() {
		filters.CreatedBy = &caller.UserID
	} else {
		published := true
		filters.IsPublished = &published
	}

	assessments, err := s.repo.Assessment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

// Get returns the assessment to its owner in any state and to everyone else only once published
func (s *assessmentService) Get(ctx context.Context, id string, caller *models.Principal) (*models.Assessment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	assessment, err := getAssessment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !assessment.IsOwnedBy(caller.UserID) && !assessment.IsPublished {
		return nil, ErrAssessmentNotFound
	}
	return assessment, nil
}

func (s *assessmentService) Update(ctx context.Context, id string, req *validator.AssessmentUpdateRequest, caller *models.Principal) (*models.Assessment, error) {
	if err := requireInstructor(caller, id, "assessment", "update"); err != nil {
		return nil, err
	}

	assessment, err := getOwnedAssessment(ctx, s.repo, id, caller, "update")
	if err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateAssessmentUpdate(req); len(errors) > 0 {
		return nil, errors
	}

	s.logger.Info("Updating assessment", "assessment_id", id, "user_id", caller.UserID)

	wasPublished := assessment.IsPublished
	s.applyUpdates(assessment, req)

	if err := s.repo.Assessment().Update(ctx, assessment); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}

	if wasPublished || assessment.IsPublished {
		cache.InvalidatePublishedAssessment(ctx, s.cache, id)
	}
	if !wasPublished && assessment.IsPublished {
		s.logger.Info("Assessment published", "assessment_id", id)
		events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.AssessmentPublished, caller.UserID, map[string]interface{}{
			"assessment_id": id,
			"title":         assessment.Title,
		}))
	}

	return assessment, nil
}

// Delete removes the assessment with its questions, sessions and responses atomically
func (s *assessmentService) Delete(ctx context.Context, id string, caller *models.Principal) error {
	if err := requireInstructor(caller, id, "assessment", "delete"); err != nil {
		return err
	}

	if _, err := getOwnedAssessment(ctx, s.repo, id, caller, "delete"); err != nil {
		return err
	}

	s.logger.Info("Deleting assessment", "assessment_id", id, "user_id", caller.UserID)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Assessment().Delete(ctx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	cache.InvalidatePublishedAssessment(ctx, s.cache, id)
	events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.AssessmentDeleted, caller.UserID, map[string]interface{}{
		"assessment_id": id,
	}))

	return nil
}

// ===== PUBLISHED CATALOG =====

func (s *assessmentService) ListPublished(ctx context.Context) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	err := s.cache.Published.CacheOrExecute(ctx, cache.PublishedListKey, &assessments, cache.PublishedCacheConfig.TTL, func() (interface{}, error) {
		published := true
		return s.repo.Assessment().List(ctx, repositories.AssessmentFilters{
			IsPublished: &published,
			SortBy:      "updated_at",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list published assessments: %w", err)
	}
	if assessments == nil {
		assessments = []*models.Assessment{}
	}
	return assessments, nil
}

func (s *assessmentService) GetPublished(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.cache.Published.CacheOrExecute(ctx, cache.PublishedAssessmentKey(id), &assessment, cache.PublishedCacheConfig.TTL, func() (interface{}, error) {
		return getPublishedAssessment(ctx, s.repo, id)
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}
