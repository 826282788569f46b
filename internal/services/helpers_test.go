package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

var (
	instructor      = &models.Principal{UserID: "instructor-1", Role: models.RoleInstructor}
	otherInstructor = &models.Principal{UserID: "instructor-2", Role: models.RoleInstructor}
	student         = &models.Principal{UserID: "student-1", Role: models.RoleStudent}
	otherStudent    = &models.Principal{UserID: "student-2", Role: models.RoleStudent}
)

func ptr[T any](v T) *T { return &v }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	repo        *memoryRepo
	events      *events.MockEventPublisher
	cache       *cache.CacheManager
	assessments AssessmentService
	questions   QuestionService
	sessions    SessionService
	courses     CourseService
	progress    ProgressService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, cache.NewCacheManager(nil))
}

func newTestEnvWithCache(t *testing.T, cm *cache.CacheManager) *testEnv {
	t.Helper()

	repo := newMemoryRepo()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	progress := NewProgressService(repo)

	return &testEnv{
		repo:        repo,
		events:      publisher,
		cache:       cm,
		assessments: NewAssessmentService(repo, cm, publisher, logger, v),
		questions:   NewQuestionService(repo, cm, logger, v),
		sessions:    NewSessionService(repo, publisher, nil, logger, v),
		courses:     NewCourseService(repo, progress, cm, publisher, logger, v),
		progress:    progress,
	}
}

func (e *testEnv) createAssessment(t *testing.T, owner *models.Principal, title string) *models.Assessment {
	t.Helper()
	a, err := e.assessments.Create(context.Background(), &validator.AssessmentCreateRequest{
		Title:          title,
		QuestionFormat: models.FlexibleList{"MCQ", "DESCRIPTIVE"},
	}, owner)
	require.NoError(t, err)
	return a
}

func (e *testEnv) publish(t *testing.T, owner *models.Principal, id string) {
	t.Helper()
	_, err := e.assessments.Update(context.Background(), id, &validator.AssessmentUpdateRequest{IsPublished: ptr(true)}, owner)
	require.NoError(t, err)
}

func (e *testEnv) addMCQ(t *testing.T, owner *models.Principal, assessmentID string, options []string, correct string, marks int) *models.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), assessmentID, &validator.QuestionCreateRequest{
		QuestionType:  models.FormatMCQ,
		Question:      "Pick one",
		Options:       models.FlexibleList(options),
		CorrectAnswer: ptr(correct),
		Marks:         ptr(marks),
	}, owner)
	require.NoError(t, err)
	return q
}

func (e *testEnv) addDescriptive(t *testing.T, owner *models.Principal, assessmentID string, marks int) *models.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), assessmentID, &validator.QuestionCreateRequest{
		QuestionType: models.FormatDescriptive,
		Question:     "Explain",
		Marks:        ptr(marks),
	}, owner)
	require.NoError(t, err)
	return q
}

func (e *testEnv) submit(t *testing.T, caller *models.Principal, assessmentID string, answers ...validator.AnswerInput) *models.SubmissionResult {
	t.Helper()
	result, err := e.sessions.Submit(context.Background(), assessmentID, &validator.SubmitResponsesRequest{Answers: &answers}, caller)
	require.NoError(t, err)
	return result
}

// responseFor finds the response to questionID inside a session
func (e *testEnv) responseFor(t *testing.T, assessmentID, sessionID, questionID string) *models.Response {
	t.Helper()
	session, err := e.sessions.Get(context.Background(), assessmentID, sessionID, instructor)
	require.NoError(t, err)
	for i := range session.Responses {
		if session.Responses[i].QuestionID == questionID {
			return &session.Responses[i]
		}
	}
	t.Fatalf("no response for question %s", questionID)
	return nil
}
