package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionCompleted SessionStatus = "COMPLETED"
	SessionEvaluated SessionStatus = "EVALUATED"
)

// Session is one candidate's submission against an assessment
type Session struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	AssessmentID string        `json:"assessmentId" gorm:"not null;size:36;index"`
	UserID       string        `json:"userId" gorm:"not null;size:255;index"`
	Status       SessionStatus `json:"status" gorm:"size:20;not null;default:COMPLETED"`
	Score        *int          `json:"score"`
	CreatedAt    time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	Responses []Response `json:"responses,omitempty" gorm:"foreignKey:SessionID"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionCompleted
	}
	return nil
}

func (Session) TableName() string {
	return "assessment_sessions"
}

// Response is the answer to one question inside a session. Question is nil
// when the question has been deleted since submission.
type Response struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SessionID  string    `json:"sessionId" gorm:"not null;size:36;index"`
	QuestionID string    `json:"questionId" gorm:"not null;size:36;index"`
	Answer     string    `json:"answer" gorm:"type:text"`
	IsCorrect  *bool     `json:"isCorrect"`
	Score      *int      `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (Response) TableName() string {
	return "assessment_responses"
}
