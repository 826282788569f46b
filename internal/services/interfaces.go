package services

import (
	"context"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

// ===== ASSESSMENT SERVICE =====

type AssessmentService interface {
	Create(ctx context.Context, req *validator.AssessmentCreateRequest, caller *models.Principal) (*models.Assessment, error)
	// List returns the caller's own assessments for instructors and published ones otherwise
	List(ctx context.Context, caller *models.Principal) ([]*models.Assessment, error)
	Get(ctx context.Context, id string, caller *models.Principal) (*models.Assessment, error)
	Update(ctx context.Context, id string, req *validator.AssessmentUpdateRequest, caller *models.Principal) (*models.Assessment, error)
	Delete(ctx context.Context, id string, caller *models.Principal) error

	// Published catalog
	ListPublished(ctx context.Context) ([]*models.Assessment, error)
	GetPublished(ctx context.Context, id string) (*models.Assessment, error)
}

// ===== QUESTION SERVICE =====

type QuestionService interface {
	List(ctx context.Context, assessmentID string, caller *models.Principal) ([]*models.Question, error)
	Create(ctx context.Context, assessmentID string, req *validator.QuestionCreateRequest, caller *models.Principal) (*models.Question, error)
	Get(ctx context.Context, assessmentID, questionID string, caller *models.Principal) (*models.Question, error)
	Update(ctx context.Context, assessmentID, questionID string, req *validator.QuestionUpdateRequest, caller *models.Principal) (*models.Question, error)
	Delete(ctx context.Context, assessmentID, questionID string, caller *models.Principal) error

	// ListPublished returns candidate-facing questions of a published assessment
	ListPublished(ctx context.Context, assessmentID string) ([]models.PublicQuestion, error)
}

// ===== SESSION SERVICE =====

type SessionService interface {
	Submit(ctx context.Context, assessmentID string, req *validator.SubmitResponsesRequest, caller *models.Principal) (*models.SubmissionResult, error)
	List(ctx context.Context, assessmentID string, caller *models.Principal) ([]*models.Session, error)
	Get(ctx context.Context, assessmentID, sessionID string, caller *models.Principal) (*models.Session, error)
	Evaluate(ctx context.Context, assessmentID, sessionID string, req *validator.EvaluateResponseRequest, caller *models.Principal) (*models.Response, error)
	AutoGrade(ctx context.Context, assessmentID, sessionID string, caller *models.Principal) (*models.Session, error)
	Export(ctx context.Context, assessmentID string, caller *models.Principal) (*ExportResult, error)
}

// ExportResult is a rendered workbook; Location is set when it was archived
type ExportResult struct {
	FileName string
	Data     []byte
	Location string
}

// ===== COURSE SERVICE =====

type CourseService interface {
	List(ctx context.Context, filters repositories.CourseFilters, caller *models.Principal) ([]*models.CourseWithProgress, error)
	Get(ctx context.Context, id string, caller *models.Principal) (*models.CourseWithProgress, error)
	Create(ctx context.Context, req *validator.CourseCreateRequest, caller *models.Principal) (*models.Course, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	Dashboard(ctx context.Context, caller *models.Principal) (*models.DashboardCourses, error)
}

type ProgressService interface {
	// GetProgress is the percentage of published chapters the user completed
	GetProgress(ctx context.Context, userID, courseID string) (int, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Assessment() AssessmentService
	Question() QuestionService
	Session() SessionService
	Course() CourseService
	Progress() ProgressService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
