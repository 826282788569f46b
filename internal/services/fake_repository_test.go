package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

// memoryStore is an in-memory stand-in for PostgreSQL. Transactions are
// serialized and roll back on error.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	clock time.Time

	assessments map[string]*models.Assessment
	questions   map[string]*models.Question
	sessions    map[string]*models.Session
	responses   map[string]*models.Response
	courses     map[string]*models.Course
	categories  map[string]*models.Category
	chapters    map[string]*models.Chapter
	purchases   []models.Purchase
	progress    []models.UserProgress
}

type memoryRepo struct {
	store *memoryStore
	inTx  bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{store: &memoryStore{
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		assessments: map[string]*models.Assessment{},
		questions:   map[string]*models.Question{},
		sessions:    map[string]*models.Session{},
		responses:   map[string]*models.Response{},
		courses:     map[string]*models.Course{},
		categories:  map[string]*models.Category{},
		chapters:    map[string]*models.Chapter{},
	}}
}

// tick advances the fake clock so creation order is observable; callers hold mu
func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func (r *memoryRepo) Assessment() repositories.AssessmentRepository { return &memAssessments{r.store} }
func (r *memoryRepo) Question() repositories.QuestionRepository     { return &memQuestions{r.store} }
func (r *memoryRepo) Session() repositories.SessionRepository       { return &memSessions{r.store} }
func (r *memoryRepo) Response() repositories.ResponseRepository     { return &memResponses{r.store} }
func (r *memoryRepo) Course() repositories.CourseRepository         { return &memCourses{r.store} }
func (r *memoryRepo) Category() repositories.CategoryRepository     { return &memCategories{r.store} }
func (r *memoryRepo) Progress() repositories.ProgressRepository     { return &memProgress{r.store} }

func (r *memoryRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snapshot := r.store.snapshot()
	if err := fn(&memoryRepo{store: r.store, inTx: true}); err != nil {
		r.store.restore(snapshot)
		return err
	}
	return nil
}

func (r *memoryRepo) Ping(ctx context.Context) error { return nil }
func (r *memoryRepo) Close() error                   { return nil }

type storeSnapshot struct {
	assessments map[string]models.Assessment
	questions   map[string]models.Question
	sessions    map[string]models.Session
	responses   map[string]models.Response
}

func copyValues[T any](in map[string]*T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = *v
	}
	return out
}

func toPointers[T any](in map[string]T) map[string]*T {
	out := make(map[string]*T, len(in))
	for k, v := range in {
		v := v
		out[k] = &v
	}
	return out
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storeSnapshot{
		assessments: copyValues(s.assessments),
		questions:   copyValues(s.questions),
		sessions:    copyValues(s.sessions),
		responses:   copyValues(s.responses),
	}
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = toPointers(snap.assessments)
	s.questions = toPointers(snap.questions)
	s.sessions = toPointers(snap.sessions)
	s.responses = toPointers(snap.responses)
}

// ===== ASSESSMENTS =====

type memAssessments struct{ s *memoryStore }

func (m *memAssessments) Create(ctx context.Context, a *models.Assessment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = a.BeforeCreate(nil)
	a.CreatedAt = m.s.tick()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.s.assessments[a.ID] = &cp
	return nil
}

func (m *memAssessments) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assessments[id]
	if !ok {
		return nil, notFound("assessment")
	}
	cp := *a
	return &cp, nil
}

func (m *memAssessments) List(ctx context.Context, f repositories.AssessmentFilters) ([]*models.Assessment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Assessment
	for _, a := range m.s.assessments {
		if f.CreatedBy != nil && a.CreatedByID != *f.CreatedBy {
			continue
		}
		if f.IsPublished != nil && a.IsPublished != *f.IsPublished {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortBy == "updated_at" {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memAssessments) Update(ctx context.Context, a *models.Assessment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.assessments[a.ID]; !ok {
		return notFound("assessment")
	}
	a.UpdatedAt = m.s.tick()
	cp := *a
	m.s.assessments[a.ID] = &cp
	return nil
}

func (m *memAssessments) Delete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.assessments[id]; !ok {
		return notFound("assessment")
	}
	for sid, sess := range m.s.sessions {
		if sess.AssessmentID != id {
			continue
		}
		for rid, resp := range m.s.responses {
			if resp.SessionID == sid {
				delete(m.s.responses, rid)
			}
		}
		delete(m.s.sessions, sid)
	}
	for qid, q := range m.s.questions {
		if q.AssessmentID == id {
			delete(m.s.questions, qid)
		}
	}
	delete(m.s.assessments, id)
	return nil
}

// ===== QUESTIONS =====

type memQuestions struct{ s *memoryStore }

func (m *memQuestions) Create(ctx context.Context, q *models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = q.BeforeCreate(nil)
	q.CreatedAt = m.s.tick()
	q.UpdatedAt = q.CreatedAt
	cp := *q
	m.s.questions[q.ID] = &cp
	return nil
}

func (m *memQuestions) GetByID(ctx context.Context, id string) (*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	q, ok := m.s.questions[id]
	if !ok {
		return nil, notFound("question")
	}
	cp := *q
	return &cp, nil
}

func (m *memQuestions) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Question
	for _, q := range m.s.questions {
		if q.AssessmentID == assessmentID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memQuestions) Update(ctx context.Context, q *models.Question) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.questions[q.ID]; !ok {
		return notFound("question")
	}
	q.UpdatedAt = m.s.tick()
	cp := *q
	m.s.questions[q.ID] = &cp
	return nil
}

func (m *memQuestions) Delete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.questions[id]; !ok {
		return notFound("question")
	}
	delete(m.s.questions, id)
	return nil
}

// ===== SESSIONS =====

type memSessions struct{ s *memoryStore }

func (m *memSessions) Create(ctx context.Context, sess *models.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = sess.BeforeCreate(nil)
	sess.CreatedAt = m.s.tick()
	sess.UpdatedAt = sess.CreatedAt
	cp := *sess
	cp.Responses = nil
	m.s.sessions[sess.ID] = &cp
	return nil
}

func (m *memSessions) GetByIDForUpdate(ctx context.Context, id string) (*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	cp := *sess
	return &cp, nil
}

func (m *memSessions) GetWithResponses(ctx context.Context, id string) (*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return m.s.withResponses(sess), nil
}

func (m *memSessions) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Session
	for _, sess := range m.s.sessions {
		if sess.AssessmentID == assessmentID {
			out = append(out, m.s.withResponses(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memSessions) UpdateScore(ctx context.Context, id string, score int, status models.SessionStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[id]
	if !ok {
		return notFound("session")
	}
	cp := *sess
	cp.Score = &score
	cp.Status = status
	cp.UpdatedAt = m.s.tick()
	m.s.sessions[id] = &cp
	return nil
}

// withResponses copies a session with its responses and their live questions; callers hold mu
func (s *memoryStore) withResponses(sess *models.Session) *models.Session {
	cp := *sess
	cp.Responses = nil
	for _, r := range s.sortedResponses(sess.ID) {
		cp.Responses = append(cp.Responses, *r)
	}
	return &cp
}

func (s *memoryStore) sortedResponses(sessionID string) []*models.Response {
	var out []*models.Response
	for _, r := range s.responses {
		if r.SessionID == sessionID {
			out = append(out, s.responseWithQuestion(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) responseWithQuestion(r *models.Response) *models.Response {
	cp := *r
	cp.Question = nil
	if q, ok := s.questions[r.QuestionID]; ok {
		qc := *q
		cp.Question = &qc
	}
	return &cp
}

// ===== RESPONSES =====

type memResponses struct{ s *memoryStore }

func (m *memResponses) CreateBatch(ctx context.Context, responses []*models.Response) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range responses {
		_ = r.BeforeCreate(nil)
		r.CreatedAt = m.s.tick()
		r.UpdatedAt = r.CreatedAt
		cp := *r
		cp.Question = nil
		m.s.responses[r.ID] = &cp
	}
	return nil
}

func (m *memResponses) GetByID(ctx context.Context, id string) (*models.Response, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.responses[id]
	if !ok {
		return nil, notFound("response")
	}
	return m.s.responseWithQuestion(r), nil
}

func (m *memResponses) ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sortedResponses(sessionID), nil
}

func (m *memResponses) UpdateGrade(ctx context.Context, id string, isCorrect *bool, score *int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.responses[id]
	if !ok {
		return notFound("response")
	}
	cp := *r
	cp.IsCorrect = isCorrect
	cp.Score = score
	cp.UpdatedAt = m.s.tick()
	m.s.responses[id] = &cp
	return nil
}

func (m *memResponses) SumScores(ctx context.Context, sessionID string) (repositories.ScoreTotals, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var totals repositories.ScoreTotals
	for _, r := range m.s.responses {
		if r.SessionID != sessionID {
			continue
		}
		q, ok := m.s.questions[r.QuestionID]
		if !ok {
			continue
		}
		if r.Score != nil {
			totals.Awarded += *r.Score
		}
		totals.Possible += q.Marks
	}
	return totals, nil
}

// ===== COURSES =====

type memCourses struct{ s *memoryStore }

func (m *memCourses) Create(ctx context.Context, c *models.Course) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = c.BeforeCreate(nil)
	c.CreatedAt = m.s.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.s.courses[c.ID] = &cp
	return nil
}

func (m *memCourses) GetByID(ctx context.Context, id string) (*models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.courses[id]
	if !ok {
		return nil, notFound("course")
	}
	return m.s.courseWithDetails(c), nil
}

func (m *memCourses) ListPublished(ctx context.Context, f repositories.CourseFilters) ([]*models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Course
	for _, c := range m.s.courses {
		if !c.IsPublished {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.CategoryID != "" && (c.CategoryID == nil || *c.CategoryID != f.CategoryID) {
			continue
		}
		out = append(out, m.s.courseWithDetails(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memCourses) ListPurchased(ctx context.Context, userID string) ([]*models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Course
	for _, p := range m.s.purchases {
		if c, ok := m.s.courses[p.CourseID]; ok && p.UserID == userID {
			out = append(out, m.s.courseWithDetails(c))
		}
	}
	return out, nil
}

func (m *memCourses) PurchasedCourseIDs(ctx context.Context, userID string, courseIDs []string) (map[string]bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := map[string]bool{}
	for _, p := range m.s.purchases {
		if p.UserID == userID && slices.Contains(courseIDs, p.CourseID) {
			out[p.CourseID] = true
		}
	}
	return out, nil
}

func (s *memoryStore) courseWithDetails(c *models.Course) *models.Course {
	cp := *c
	cp.Chapters = nil
	if c.CategoryID != nil {
		if cat, ok := s.categories[*c.CategoryID]; ok {
			cc := *cat
			cp.Category = &cc
		}
	}
	for _, ch := range s.chapters {
		if ch.CourseID == c.ID && ch.IsPublished {
			cp.Chapters = append(cp.Chapters, *ch)
		}
	}
	sort.Slice(cp.Chapters, func(i, j int) bool { return cp.Chapters[i].Position < cp.Chapters[j].Position })
	return &cp
}

type memCategories struct{ s *memoryStore }

func (m *memCategories) List(ctx context.Context) ([]*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Category
	for _, c := range m.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memProgress struct{ s *memoryStore }

func (m *memProgress) CountPublishedChapters(ctx context.Context, courseID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, ch := range m.s.chapters {
		if ch.CourseID == courseID && ch.IsPublished {
			n++
		}
	}
	return n, nil
}

func (m *memProgress) CountCompletedChapters(ctx context.Context, userID, courseID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, p := range m.s.progress {
		ch, ok := m.s.chapters[p.ChapterID]
		if ok && p.UserID == userID && p.IsCompleted && ch.CourseID == courseID && ch.IsPublished {
			n++
		}
	}
	return n, nil
}

// ===== SEEDING =====

func (r *memoryRepo) addCategory(id, name string) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.categories[id] = &models.Category{ID: id, Name: name}
}

func (r *memoryRepo) addCourse(c models.Course) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c.CreatedAt = r.store.tick()
	r.store.courses[c.ID] = &c
}

func (r *memoryRepo) addChapter(ch models.Chapter) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.chapters[ch.ID] = &ch
}

func (r *memoryRepo) addPurchase(userID, courseID string) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.purchases = append(r.store.purchases, models.Purchase{UserID: userID, CourseID: courseID})
}

func (r *memoryRepo) completeChapter(userID, chapterID string) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.progress = append(r.store.progress, models.UserProgress{UserID: userID, ChapterID: chapterID, IsCompleted: true})
}

func (r *memoryRepo) counts() (assessments, questions, sessions, responses int) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.assessments), len(r.store.questions), len(r.store.sessions), len(r.store.responses)
}
