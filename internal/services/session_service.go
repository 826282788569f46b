package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/storage"
	"github.com/eklavya-edu/assessment-service/internal/validator"
	"github.com/eklavya-edu/assessment-service/pkg/monitoring"
)

type sessionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	reports   storage.ReportStore
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

// NewSessionService builds the recorder; reports may be nil to skip archiving exports
func NewSessionService(repo repositories.Repository, publisher events.EventPublisher, reports storage.ReportStore, logger *slog.Logger, validator *validator.Validator) SessionService {
	return &sessionService{
		repo:      repo,
		publisher: publisher,
		reports:   reports,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Submit records one session with a response per answer. Nothing is graded here.
func (s *sessionService) Submit(ctx context.Context, assessmentID string, req *validator.SubmitResponsesRequest, caller *models.Principal) (*models.SubmissionResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateSubmission(req); len(errors) > 0 {
		return nil, errors
	}

	if _, err := getPublishedAssessment(ctx, s.repo, assessmentID); err != nil {
		return nil, err
	}

	if err := s.checkAnswersBelong(ctx, assessmentID, *req.Answers); err != nil {
		return nil, err
	}

	session := &models.Session{
		AssessmentID: assessmentID,
		UserID:       caller.UserID,
		Status:       models.SessionCompleted,
	}
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Session().Create(ctx, session); err != nil {
			return err
		}

		responses := make([]*models.Response, 0, len(*req.Answers))
		for _, a := range *req.Answers {
			responses = append(responses, &models.Response{
				SessionID:  session.ID,
				QuestionID: a.QuestionID,
				Answer:     a.Answer,
			})
		}
		return tx.Response().CreateBatch(ctx, responses)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	count := len(*req.Answers)
	s.logger.Info("Session submitted",
		"assessment_id", assessmentID,
		"session_id", session.ID,
		"user_id", caller.UserID,
		"responses", count)
	monitoring.SessionsSubmitted.Inc()
	events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.SessionSubmitted, caller.UserID, map[string]interface{}{
		"assessment_id":  assessmentID,
		"session_id":     session.ID,
		"response_count": count,
	}))

	return &models.SubmissionResult{
		Success:       true,
		SessionID:     session.ID,
		ResponseCount: count,
	}, nil
}

func (s *sessionService) List(ctx context.Context, assessmentID string, caller *models.Principal) ([]*models.Session, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "list sessions of"); err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) Get(ctx context.Context, assessmentID, sessionID string, caller *models.Principal) (*models.Session, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "read session of"); err != nil {
		return nil, err
	}
	return s.getSessionDetail(ctx, s.repo, assessmentID, sessionID)
}

// Evaluate grades one response and recomputes the session score under the session row lock
func (s *sessionService) Evaluate(ctx context.Context, assessmentID, sessionID string, req *validator.EvaluateResponseRequest, caller *models.Principal) (*models.Response, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "evaluate session of"); err != nil {
		return nil, err
	}

	bv := s.validator.GetBusinessValidator()
	if errors := bv.Validate(req); len(errors) > 0 {
		return nil, errors
	}

	var (
		updated *models.Response
		score   int
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := lockSession(ctx, tx, assessmentID, sessionID); err != nil {
			return err
		}

		response, err := tx.Response().GetByID(ctx, req.ResponseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrResponseNotFound
			}
			return fmt.Errorf("failed to get response: %w", err)
		}
		if response.SessionID != sessionID {
			return ErrResponseNotFound
		}

		// a response whose question was deleted has no marks to grade against
		if response.Question == nil {
			return ErrQuestionNotFound
		}
		if errors := bv.ValidateScore(req.Score, response.Question.Marks); len(errors) > 0 {
			return errors
		}

		if err := tx.Response().UpdateGrade(ctx, response.ID, req.IsCorrect, req.Score); err != nil {
			return err
		}
		response.IsCorrect = req.IsCorrect
		response.Score = req.Score
		updated = response

		score, err = recomputeSessionScore(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Response evaluated",
		"assessment_id", assessmentID,
		"session_id", sessionID,
		"response_id", updated.ID,
		"session_score", score)
	monitoring.ResponsesEvaluated.WithLabelValues("manual").Inc()
	s.publishEvaluated(ctx, caller, assessmentID, sessionID, score)

	return updated, nil
}

// AutoGrade scores ungraded MCQ responses against their answer keys and recomputes the session
func (s *sessionService) AutoGrade(ctx context.Context, assessmentID, sessionID string, caller *models.Principal) (*models.Session, error) {
	if _, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "grade session of"); err != nil {
		return nil, err
	}

	var (
		graded int
		score  int
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := lockSession(ctx, tx, assessmentID, sessionID); err != nil {
			return err
		}

		responses, err := tx.Response().ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}

		for _, r := range responses {
			if !isAutoGradable(r) {
				continue
			}
			correct, awarded := gradeMCQ(r.Answer, r.Question)
			if err := tx.Response().UpdateGrade(ctx, r.ID, &correct, &awarded); err != nil {
				return err
			}
			graded++
		}

		if graded == 0 {
			return nil
		}
		score, err = recomputeSessionScore(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if graded > 0 {
		s.logger.Info("Session auto-graded",
			"assessment_id", assessmentID,
			"session_id", sessionID,
			"graded", graded,
			"session_score", score)
		monitoring.ResponsesEvaluated.WithLabelValues("auto").Add(float64(graded))
		s.publishEvaluated(ctx, caller, assessmentID, sessionID, score)
	}

	return s.getSessionDetail(ctx, s.repo, assessmentID, sessionID)
}

func (s *sessionService) Export(ctx context.Context, assessmentID string, caller *models.Principal) (*ExportResult, error) {
	assessment, err := getOwnedAssessment(ctx, s.repo, assessmentID, caller, "export sessions of")
	if err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	data, err := buildSessionWorkbook(assessment, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	result := &ExportResult{
		FileName: fmt.Sprintf("assessment-%s-sessions.xlsx", assessmentID),
		Data:     data,
	}

	if s.reports != nil {
		location, err := s.reports.Upload(ctx, storage.ReportObjectName(assessmentID, s.now()), data, storage.XLSXContentType)
		if err != nil {
			s.logger.Error("Failed to archive session report", "assessment_id", assessmentID, "error", err)
		} else {
			result.Location = location
		}
	}

	s.logger.Info("Sessions exported", "assessment_id", assessmentID, "sessions", len(sessions))
	return result, nil
}

func (s *sessionService) checkAnswersBelong(ctx context.Context, assessmentID string, answers []validator.AnswerInput) error {
	if len(answers) == 0 {
		return nil
	}

	questions, err := s.repo.Question().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var errors ValidationErrors
	for i, a := range answers {
		if !known[a.QuestionID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("answers[%d].questionId", i),
				Message: "does not belong to this assessment",
				Value:   a.QuestionID,
				Rule:    "question_in_assessment",
			})
		}
	}
	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (s *sessionService) getSessionDetail(ctx context.Context, repo repositories.Repository, assessmentID, sessionID string) (*models.Session, error) {
	session, err := repo.Session().GetWithResponses(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.AssessmentID != assessmentID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) publishEvaluated(ctx context.Context, caller *models.Principal, assessmentID, sessionID string, score int) {
	events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.SessionEvaluated, caller.UserID, map[string]interface{}{
		"assessment_id": assessmentID,
		"session_id":    sessionID,
		"score":         score,
	}))
}

// lockSession takes the session row lock and checks it belongs to the assessment
func lockSession(ctx context.Context, tx repositories.Repository, assessmentID, sessionID string) (*models.Session, error) {
	session, err := tx.Session().GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	if session.AssessmentID != assessmentID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func isAutoGradable(r *models.Response) bool {
	return r.Question != nil &&
		r.Question.IsMCQ() &&
		r.Question.CorrectAnswer != nil &&
		r.IsCorrect == nil &&
		r.Score == nil
}
