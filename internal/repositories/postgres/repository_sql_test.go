package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

// sqlRecorder collects statements from a dry-run session; nothing reaches a server
type sqlRecorder struct {
	mu   sync.Mutex
	stmt []string
}

func (r *sqlRecorder) record(tx *gorm.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmt = append(r.stmt, tx.Statement.SQL.String())
}

func (r *sqlRecorder) joined() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.stmt, "\n")
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=eklavya dbname=eklavya sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	rec := &sqlRecorder{}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record", rec.record))
	return db, rec
}

func TestSessionPostgreSQL_GetByIDForUpdateLocksRow(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewSessionPostgreSQL(db).GetByIDForUpdate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, rec.joined(), "FOR UPDATE")
}

func TestCoursePostgreSQL_ListPublishedFilters(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewCoursePostgreSQL(db).ListPublished(context.Background(), repositories.CourseFilters{Title: "go", CategoryID: "cat-1"})
	require.NoError(t, err)

	sql := rec.joined()
	assert.Regexp(t, `courses\.title ILIKE \$\d+ ESCAPE '\\'`, sql)
	assert.Contains(t, sql, "courses.category_id =")
	assert.Contains(t, sql, "courses.created_at DESC")
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "go", want: `%go%`},
		{term: "100%", want: `%100\%%`},
		{term: "a_b", want: `%a\_b%`},
		{term: `c:\tmp`, want: `%c:\\tmp%`},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.term))
		})
	}
}

func TestQuestionPostgreSQL_ListByAssessmentOrder(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewQuestionPostgreSQL(db).ListByAssessment(context.Background(), "a1")
	require.NoError(t, err)
	assert.Contains(t, rec.joined(), "created_at ASC")
}

func TestWrapNotFound(t *testing.T) {
	assert.NoError(t, wrapNotFound(nil, "session"))

	err := wrapNotFound(gorm.ErrRecordNotFound, "session")
	assert.True(t, repositories.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "session")

	err = wrapNotFound(errors.New("connection reset"), "session")
	assert.False(t, repositories.IsNotFoundError(err))
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(&gorm.DB{RowsAffected: 1}, "response"))
	assert.True(t, repositories.IsNotFoundError(requireAffected(&gorm.DB{}, "response")))

	boom := errors.New("boom")
	assert.ErrorIs(t, requireAffected(&gorm.DB{Error: boom}, "response"), boom)
}
