package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultMarks           = 1
	DefaultDifficultyLevel = 1
	MinDifficultyLevel     = 1
	MaxDifficultyLevel     = 5
)

type AccessibilityOptions struct {
	TextToSpeech bool `json:"textToSpeech"`
	HighContrast bool `json:"highContrast"`
	LargerText   bool `json:"largerText"`
}

type Question struct {
	ID                   string                                    `json:"id" gorm:"primaryKey;size:36"`
	AssessmentID         string                                    `json:"assessmentId" gorm:"not null;size:36;index"`
	QuestionType         QuestionFormat                            `json:"questionType" gorm:"size:20;not null"`
	Question             string                                    `json:"question" gorm:"type:text;not null"`
	Options              datatypes.JSONSlice[string]               `json:"options" gorm:"type:jsonb"`
	CorrectAnswer        *string                                   `json:"correctAnswer,omitempty" gorm:"type:text"`
	Marks                int                                       `json:"marks" gorm:"not null;default:1"`
	DifficultyLevel      int                                       `json:"difficultyLevel" gorm:"not null;default:1"`
	AccessibilityOptions *datatypes.JSONType[AccessibilityOptions] `json:"accessibilityOptions" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (q *Question) IsMCQ() bool {
	return q.QuestionType == FormatMCQ
}

// PublicQuestion is the candidate-facing projection of a question; it never carries the answer key
type PublicQuestion struct {
	ID                   string                `json:"id"`
	AssessmentID         string                `json:"assessmentId"`
	QuestionType         QuestionFormat        `json:"questionType"`
	Question             string                `json:"question"`
	Options              []string              `json:"options"`
	Marks                int                   `json:"marks"`
	DifficultyLevel      int                   `json:"difficultyLevel"`
	AccessibilityOptions *AccessibilityOptions `json:"accessibilityOptions"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

func (q *Question) Public() PublicQuestion {
	pq := PublicQuestion{
		ID:              q.ID,
		AssessmentID:    q.AssessmentID,
		QuestionType:    q.QuestionType,
		Question:        q.Question,
		Options:         []string(q.Options),
		Marks:           q.Marks,
		DifficultyLevel: q.DifficultyLevel,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
	if pq.Options == nil {
		pq.Options = []string{}
	}
	if q.AccessibilityOptions != nil {
		opts := q.AccessibilityOptions.Data()
		pq.AccessibilityOptions = &opts
	}
	return pq
}

func (Question) TableName() string {
	return "questions"
}
