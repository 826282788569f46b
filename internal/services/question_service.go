package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) List(ctx context.Context, assessmentID string, caller *models.Principal) ([]*models.Question, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "list questions of"); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *questionService) Create(ctx context.Context, assessmentID string, req *validator.QuestionCreateRequest, caller *models.Principal) (*models.Question, error) {
	assessment, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "add question to")
	if err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errors) > 0 {
		return nil, errors
	}

	question := &models.Question{
		AssessmentID:    assessmentID,
		QuestionType:    req.QuestionType,
		Question:        strings.TrimSpace(req.Question),
		CorrectAnswer:   trimmedPtr(req.CorrectAnswer),
		Marks:           models.DefaultMarks,
		DifficultyLevel: models.DefaultDifficultyLevel,
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.DifficultyLevel != nil {
		question.DifficultyLevel = *req.DifficultyLevel
	}
	if question.IsMCQ() {
		question.Options = datatypes.JSONSlice[string](req.Options.Trimmed())
	}
	if assessment.InclusivityMode && req.AccessibilityOptions != nil {
		question.AccessibilityOptions = accessibilityJSON(*req.AccessibilityOptions)
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "assessment_id", assessmentID, "question_id", question.ID, "type", question.QuestionType)
	s.invalidatePublished(ctx, assessment)

	return question, nil
}

func (s *questionService) Get(ctx context.Context, assessmentID, questionID string, caller *models.Principal) (*models.Question, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "read question of"); err != nil {
		return nil, err
	}
	return s.getQuestionInAssessment(ctx, assessmentID, questionID)
}

func (s *questionService) Update(ctx context.Context, assessmentID, questionID string, req *validator.QuestionUpdateRequest, caller *models.Principal) (*models.Question, error) {
	assessment, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "update question of")
	if err != nil {
		return nil, err
	}

	question, err := s.getQuestionInAssessment(ctx, assessmentID, questionID)
	if err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req, question); len(errors) > 0 {
		return nil, errors
	}

	if req.Question != nil {
		question.Question = strings.TrimSpace(*req.Question)
	}
	if req.Options != nil && question.IsMCQ() {
		question.Options = datatypes.JSONSlice[string](req.Options.Trimmed())
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = trimmedPtr(req.CorrectAnswer)
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.DifficultyLevel != nil {
		question.DifficultyLevel = *req.DifficultyLevel
	}
	if req.AccessibilityOptions != nil && assessment.InclusivityMode {
		question.AccessibilityOptions = accessibilityJSON(*req.AccessibilityOptions)
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "assessment_id", assessmentID, "question_id", questionID)
	s.invalidatePublished(ctx, assessment)

	return question, nil
}

// Delete removes only the question; recorded responses to it stay and drop out of scoring
func (s *questionService) Delete(ctx context.Context, assessmentID, questionID string, caller *models.Principal) error {
	assessment, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "delete question of")
	if err != nil {
		return err
	}

	if _, err := s.getQuestionInAssessment(ctx, assessmentID, questionID); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "assessment_id", assessmentID, "question_id", questionID)
	s.invalidatePublished(ctx, assessment)

	return nil
}

func (s *questionService) ListPublished(ctx context.Context, assessmentID string) ([]models.PublicQuestion, error) {
	var questions []models.PublicQuestion
	err := s.cache.Published.CacheOrExecute(ctx, cache.PublishedQuestionsKey(assessmentID), &questions, cache.PublishedCacheConfig.TTL, func() (interface{}, error) {
		if _, err := getPublishedAssessment(ctx, s.repo, assessmentID); err != nil {
			return nil, err
		}

		stored, err := s.repo.Question().ListByAssessment(ctx, assessmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list questions: %w", err)
		}

		public := make([]models.PublicQuestion, 0, len(stored))
		for _, q := range stored {
			public = append(public, q.Public())
		}
		return public, nil
	})
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []models.PublicQuestion{}
	}
	return questions, nil
}

func (s *questionService) getQuestionInAssessment(ctx context.Context, assessmentID, questionID string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.AssessmentID != assessmentID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *questionService) invalidatePublished(ctx context.Context, assessment *models.Assessment) {
	if assessment.IsPublished {
		cache.SafeDelete(ctx, s.cache.Published, cache.PublishedQuestionsKey(assessment.ID))
	}
}

func accessibilityJSON(opts models.AccessibilityOptions) *datatypes.JSONType[models.AccessibilityOptions] {
	jt := datatypes.NewJSONType(opts)
	return &jt
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
