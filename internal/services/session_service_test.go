package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

func TestSessionService_WorkedExample(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a, err := env.assessments.Create(ctx, &validator.AssessmentCreateRequest{
		Title:          "Quiz",
		AssessmentType: ptr(models.AssessmentOnline),
		QuestionFormat: models.FlexibleList{"MCQ"},
	}, instructor)
	require.NoError(t, err)
	q := env.addMCQ(t, instructor, a.ID, []string{"x", "y"}, "y", 10)
	env.publish(t, instructor, a.ID)

	result := env.submit(t, student, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "y"})
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ResponseCount)

	session, err := env.sessions.Get(ctx, a.ID, result.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Nil(t, session.Score)
	require.Len(t, session.Responses, 1)
	assert.Nil(t, session.Responses[0].IsCorrect, "submission never grades")

	updated, err := env.sessions.Evaluate(ctx, a.ID, result.SessionID, &validator.EvaluateResponseRequest{
		ResponseID: session.Responses[0].ID,
		IsCorrect:  ptr(true),
		Score:      ptr(10),
	}, instructor)
	require.NoError(t, err)
	assert.Equal(t, 10, *updated.Score)
	assert.True(t, *updated.IsCorrect)

	session, err = env.sessions.Get(ctx, a.ID, result.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEvaluated, session.Status)
	require.NotNil(t, session.Score)
	assert.Equal(t, 100, *session.Score)

	assert.Len(t, env.events.EventsOfType(events.SessionSubmitted), 1)
	assert.Len(t, env.events.EventsOfType(events.SessionEvaluated), 1)
}

func TestSessionService_SubmitRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	draft := env.createAssessment(t, instructor, "draft")
	dq := env.addDescriptive(t, instructor, draft.ID, 1)

	a := env.createAssessment(t, instructor, "Quiz")
	q := env.addDescriptive(t, instructor, a.ID, 1)
	env.publish(t, instructor, a.ID)

	answers := []validator.AnswerInput{{QuestionID: dq.ID, Answer: "a"}}
	_, err := env.sessions.Submit(ctx, draft.ID, &validator.SubmitResponsesRequest{Answers: &answers}, student)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = env.sessions.Submit(ctx, "missing", &validator.SubmitResponsesRequest{Answers: &answers}, student)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = env.sessions.Submit(ctx, a.ID, &validator.SubmitResponsesRequest{}, student)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "answers", verrs[0].Field)

	// question from another assessment
	foreign := []validator.AnswerInput{{QuestionID: q.ID, Answer: "a"}, {QuestionID: dq.ID, Answer: "b"}}
	_, err = env.sessions.Submit(ctx, a.ID, &validator.SubmitResponsesRequest{Answers: &foreign}, student)
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "answers[1].questionId", verrs[0].Field)

	_, err = env.sessions.Submit(ctx, a.ID, &validator.SubmitResponsesRequest{Answers: &foreign}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, sessions, responses := env.repo.counts()
	assert.Zero(t, sessions)
	assert.Zero(t, responses)

	empty := []validator.AnswerInput{}
	result, err := env.sessions.Submit(ctx, a.ID, &validator.SubmitResponsesRequest{Answers: &empty}, student)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ResponseCount)
}

func TestSessionService_ListAndGetAreOwnerOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAssessment(t, instructor, "Quiz")
	q := env.addDescriptive(t, instructor, a.ID, 1)
	env.publish(t, instructor, a.ID)

	first := env.submit(t, student, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "one"})
	second := env.submit(t, otherStudent, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "two"})

	sessions, err := env.sessions.List(ctx, a.ID, instructor)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.SessionID, sessions[0].ID, "newest first")
	assert.Equal(t, first.SessionID, sessions[1].ID)
	require.Len(t, sessions[0].Responses, 1)
	require.NotNil(t, sessions[0].Responses[0].Question)

	_, err = env.sessions.List(ctx, a.ID, student)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.sessions.Get(ctx, a.ID, first.SessionID, otherInstructor)
	assert.ErrorIs(t, err, ErrForbidden)

	other := env.createAssessment(t, instructor, "Other")
	_, err = env.sessions.Get(ctx, other.ID, first.SessionID, instructor)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.sessions.Get(ctx, a.ID, "missing", instructor)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_EvaluateRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAssessment(t, instructor, "Quiz")
	q := env.addDescriptive(t, instructor, a.ID, 5)
	env.publish(t, instructor, a.ID)

	s1 := env.submit(t, student, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "one"})
	s2 := env.submit(t, otherStudent, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "two"})
	r1 := env.responseFor(t, a.ID, s1.SessionID, q.ID)
	r2 := env.responseFor(t, a.ID, s2.SessionID, q.ID)

	tests := []struct {
		name      string
		sessionID string
		req       *validator.EvaluateResponseRequest
		caller    *models.Principal
		wantErr   error
		wantField string
	}{
		{name: "missing response id", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{Score: ptr(1)}, caller: instructor, wantField: "responseId"},
		{name: "response of another session", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{ResponseID: r2.ID, Score: ptr(1)}, caller: instructor, wantErr: ErrResponseNotFound},
		{name: "unknown response", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{ResponseID: "missing"}, caller: instructor, wantErr: ErrResponseNotFound},
		{name: "score above marks", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{ResponseID: r1.ID, Score: ptr(6)}, caller: instructor, wantField: "score"},
		{name: "negative score", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{ResponseID: r1.ID, Score: ptr(-1)}, caller: instructor, wantField: "score"},
		{name: "unknown session", sessionID: "missing", req: &validator.EvaluateResponseRequest{ResponseID: r1.ID, Score: ptr(1)}, caller: instructor, wantErr: ErrSessionNotFound},
		{name: "not owner", sessionID: s1.SessionID, req: &validator.EvaluateResponseRequest{ResponseID: r1.ID, Score: ptr(1)}, caller: otherInstructor, wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sessions.Evaluate(ctx, a.ID, tt.sessionID, tt.req, tt.caller)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var verrs ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, tt.wantField, verrs[0].Field)
			}
		})
	}

	session, err := env.sessions.Get(ctx, a.ID, s1.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status, "failed evaluations leave the session untouched")
	assert.Nil(t, session.Score)
}

func TestSessionService_ScoreRecomputation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAssessment(t, instructor, "Quiz")
	q1 := env.addDescriptive(t, instructor, a.ID, 4)
	q2 := env.addDescriptive(t, instructor, a.ID, 2)
	q3 := env.addDescriptive(t, instructor, a.ID, 3)
	env.publish(t, instructor, a.ID)

	sub := env.submit(t, student, a.ID,
		validator.AnswerInput{QuestionID: q1.ID, Answer: "a"},
		validator.AnswerInput{QuestionID: q2.ID, Answer: "b"},
		validator.AnswerInput{QuestionID: q3.ID, Answer: "c"},
	)

	evaluate := func(questionID string, score int) int {
		r := env.responseFor(t, a.ID, sub.SessionID, questionID)
		_, err := env.sessions.Evaluate(ctx, a.ID, sub.SessionID, &validator.EvaluateResponseRequest{
			ResponseID: r.ID, IsCorrect: ptr(score > 0), Score: ptr(score),
		}, instructor)
		require.NoError(t, err)
		session, err := env.sessions.Get(ctx, a.ID, sub.SessionID, instructor)
		require.NoError(t, err)
		return *session.Score
	}

	// 3 of 9
	assert.Equal(t, 33, evaluate(q1.ID, 3))
	// 5 of 9 = 55.6
	assert.Equal(t, 56, evaluate(q2.ID, 2))
	// re-grading replaces the earlier score: 1+2 of 9
	assert.Equal(t, 33, evaluate(q1.ID, 1))
	assert.Equal(t, 67, evaluate(q3.ID, 3))

	// the deleted question drops out of both sums: 1+2 of 6
	dangling := env.responseFor(t, a.ID, sub.SessionID, q3.ID)
	require.NoError(t, env.questions.Delete(ctx, a.ID, q3.ID, instructor))
	assert.Equal(t, 50, evaluate(q2.ID, 2))

	// its response can no longer be graded
	_, err := env.sessions.Evaluate(ctx, a.ID, sub.SessionID, &validator.EvaluateResponseRequest{
		ResponseID: dangling.ID, IsCorrect: ptr(true), Score: ptr(100),
	}, instructor)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	session, err := env.sessions.Get(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, 50, *session.Score)
	for _, r := range session.Responses {
		if r.ID == dangling.ID {
			assert.Equal(t, 3, *r.Score, "stored grade is untouched")
		}
	}
}

func TestSessionService_ConcurrentEvaluations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAssessment(t, instructor, "Quiz")

	const n = 8
	answers := make([]validator.AnswerInput, 0, n)
	for i := 0; i < n; i++ {
		q := env.addDescriptive(t, instructor, a.ID, 10)
		answers = append(answers, validator.AnswerInput{QuestionID: q.ID, Answer: "a"})
	}
	env.publish(t, instructor, a.ID)
	sub := env.submit(t, student, a.ID, answers...)

	session, err := env.sessions.Get(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)
	require.Len(t, session.Responses, n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i, r := range session.Responses {
		wg.Add(1)
		go func(responseID string, score int) {
			defer wg.Done()
			_, err := env.sessions.Evaluate(ctx, a.ID, sub.SessionID, &validator.EvaluateResponseRequest{
				ResponseID: responseID, IsCorrect: ptr(true), Score: ptr(score),
			}, instructor)
			errs <- err
		}(r.ID, i+1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// awarded 1+2+...+8 = 36 of 80
	session, err = env.sessions.Get(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEvaluated, session.Status)
	assert.Equal(t, Percentage(36, 80), *session.Score)
	assert.Equal(t, 45, *session.Score)
}

func TestSessionService_AutoGrade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAssessment(t, instructor, "Quiz")
	right := env.addMCQ(t, instructor, a.ID, []string{"Paris", "Rome"}, "Paris", 4)
	wrong := env.addMCQ(t, instructor, a.ID, []string{"2", "3"}, "2", 4)
	essay := env.addDescriptive(t, instructor, a.ID, 2)
	env.publish(t, instructor, a.ID)

	sub := env.submit(t, student, a.ID,
		validator.AnswerInput{QuestionID: right.ID, Answer: "  paris "},
		validator.AnswerInput{QuestionID: wrong.ID, Answer: "3"},
		validator.AnswerInput{QuestionID: essay.ID, Answer: "long text"},
	)

	_, err := env.sessions.AutoGrade(ctx, a.ID, sub.SessionID, otherInstructor)
	assert.ErrorIs(t, err, ErrForbidden)

	session, err := env.sessions.AutoGrade(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEvaluated, session.Status)
	// 4 of 10
	assert.Equal(t, 40, *session.Score)

	byQuestion := map[string]models.Response{}
	for _, r := range session.Responses {
		byQuestion[r.QuestionID] = r
	}
	assert.True(t, *byQuestion[right.ID].IsCorrect)
	assert.Equal(t, 4, *byQuestion[right.ID].Score)
	assert.False(t, *byQuestion[wrong.ID].IsCorrect)
	assert.Equal(t, 0, *byQuestion[wrong.ID].Score)
	assert.Nil(t, byQuestion[essay.ID].IsCorrect, "non-MCQ responses are left for manual grading")

	// manual grades are never overwritten by a second pass
	_, err = env.sessions.Evaluate(ctx, a.ID, sub.SessionID, &validator.EvaluateResponseRequest{
		ResponseID: byQuestion[wrong.ID].ID, IsCorrect: ptr(true), Score: ptr(4),
	}, instructor)
	require.NoError(t, err)

	session, err = env.sessions.AutoGrade(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)
	assert.Equal(t, 80, *session.Score)
	assert.Len(t, env.events.EventsOfType(events.SessionEvaluated), 2)
}

type recordingReportStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (r *recordingReportStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	if r.objects == nil {
		r.objects = map[string][]byte{}
	}
	r.objects[name] = data
	return "/reports/" + name, nil
}

func TestSessionService_Export(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	store := &recordingReportStore{}
	svc := NewSessionService(env.repo, env.events, store, testLogger(), validator.New()).(*sessionService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	a := env.createAssessment(t, instructor, "Quiz")
	q := env.addMCQ(t, instructor, a.ID, []string{"x", "y"}, "y", 10)
	env.publish(t, instructor, a.ID)
	sub := env.submit(t, student, a.ID, validator.AnswerInput{QuestionID: q.ID, Answer: "y"})
	_, err := svc.AutoGrade(ctx, a.ID, sub.SessionID, instructor)
	require.NoError(t, err)

	_, err = svc.Export(ctx, a.ID, student)
	assert.ErrorIs(t, err, ErrForbidden)

	result, err := svc.Export(ctx, a.ID, instructor)
	require.NoError(t, err)
	assert.Equal(t, "assessment-"+a.ID+"-sessions.xlsx", result.FileName)
	assert.Equal(t, "/reports/assessments/"+a.ID+"/sessions-20240501T120000Z.xlsx", result.Location)
	require.Len(t, store.objects, 1)

	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer f.Close()

	sessions, err := f.GetRows(SessionsSheet)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Session ID", sessions[0][0])
	assert.Equal(t, []string{sub.SessionID, student.UserID, "EVALUATED", "100", "1"}, sessions[1][:5])

	responses, err := f.GetRows(ResponsesSheet)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, []string{sub.SessionID, student.UserID, q.ID, "Pick one", "MCQ", "y", "yes", "10", "10"}, responses[1])
}

func TestSessionService_ExportArchiveFailureStillReturnsWorkbook(t *testing.T) {
	env := newTestEnv(t)
	store := &recordingReportStore{err: errors.New("bucket unavailable")}
	svc := NewSessionService(env.repo, env.events, store, testLogger(), validator.New())

	a := env.createAssessment(t, instructor, "Quiz")

	result, err := svc.Export(context.Background(), a.ID, instructor)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Data)
	assert.Empty(t, result.Location)
}
