package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentType string

const (
	AssessmentOnline  AssessmentType = "ONLINE"
	AssessmentOffline AssessmentType = "OFFLINE"
	AssessmentBlended AssessmentType = "BLENDED"
)

func (t AssessmentType) IsValid() bool {
	switch t {
	case AssessmentOnline, AssessmentOffline, AssessmentBlended:
		return true
	}
	return false
}

// QuestionFormat doubles as the question type of a single question
type QuestionFormat string

const (
	FormatMCQ         QuestionFormat = "MCQ"
	FormatDescriptive QuestionFormat = "DESCRIPTIVE"
	FormatPractical   QuestionFormat = "PRACTICAL"
	FormatViva        QuestionFormat = "VIVA"
	FormatPenPaper    QuestionFormat = "PEN_PAPER"
)

var AllQuestionFormats = []QuestionFormat{FormatMCQ, FormatDescriptive, FormatPractical, FormatViva, FormatPenPaper}

func (f QuestionFormat) IsValid() bool {
	for _, v := range AllQuestionFormats {
		if f == v {
			return true
		}
	}
	return false
}

type Assessment struct {
	ID              string                              `json:"id" gorm:"primaryKey;size:36"`
	Title           string                              `json:"title" gorm:"not null;size:200"`
	Description     *string                             `json:"description" gorm:"type:text"`
	AssessmentType  AssessmentType                      `json:"assessmentType" gorm:"size:20;not null;default:ONLINE"`
	QuestionFormat  datatypes.JSONSlice[QuestionFormat] `json:"questionFormat" gorm:"type:jsonb"`
	InclusivityMode bool                                `json:"inclusivityMode" gorm:"not null;default:false"`
	IsPublished     bool                                `json:"isPublished" gorm:"not null;default:false;index"`
	CourseID        *string                             `json:"courseId" gorm:"size:36;index"`

	CreatedByID string    `json:"createdById" gorm:"not null;size:255;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"index"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssessmentType == "" {
		a.AssessmentType = AssessmentOnline
	}
	return nil
}

func (a *Assessment) IsOwnedBy(userID string) bool {
	return a.CreatedByID == userID
}

func (Assessment) TableName() string {
	return "assessments"
}
