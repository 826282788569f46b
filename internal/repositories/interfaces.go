package repositories

import (
	"context"

	"github.com/eklavya-edu/assessment-service/internal/models"
)

type AssessmentFilters struct {
	CreatedBy   *string
	IsPublished *bool
	// SortBy is "created_at" or "updated_at"; results are always newest first
	SortBy string
}

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, error)
	Update(ctx context.Context, assessment *models.Assessment) error
	// Delete removes the assessment together with its questions, sessions and responses
	Delete(ctx context.Context, id string) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	// ListByAssessment returns questions in creation order
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// GetByIDForUpdate locks the session row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*models.Session, error)
	// GetWithResponses loads the session with responses and their questions
	GetWithResponses(ctx context.Context, id string) (*models.Session, error)
	// ListByAssessment returns sessions newest first, with responses and their questions
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Session, error)
	UpdateScore(ctx context.Context, id string, score int, status models.SessionStatus) error
}

// ScoreTotals aggregates a session's responses whose question still exists
type ScoreTotals struct {
	Awarded  int
	Possible int
}

type ResponseRepository interface {
	CreateBatch(ctx context.Context, responses []*models.Response) error
	GetByID(ctx context.Context, id string) (*models.Response, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error)
	UpdateGrade(ctx context.Context, id string, isCorrect *bool, score *int) error
	SumScores(ctx context.Context, sessionID string) (ScoreTotals, error)
}

type CourseFilters struct {
	Title      string
	CategoryID string
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// ListPublished returns published courses newest first, with category and published chapters
	ListPublished(ctx context.Context, filters CourseFilters) ([]*models.Course, error)
	// ListPurchased returns courses the user bought, with category and published chapters
	ListPurchased(ctx context.Context, userID string) ([]*models.Course, error)
	// PurchasedCourseIDs reports which of courseIDs the user bought
	PurchasedCourseIDs(ctx context.Context, userID string, courseIDs []string) (map[string]bool, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
}

type ProgressRepository interface {
	CountPublishedChapters(ctx context.Context, courseID string) (int64, error)
	CountCompletedChapters(ctx context.Context, userID, courseID string) (int64, error)
}
