package validator

import (
	"github.com/eklavya-edu/assessment-service/internal/models"
)

// AssessmentCreateRequest represents the request structure for creating assessments
type AssessmentCreateRequest struct {
	Title           string                 `json:"title" validate:"required,max=200"`
	Description     *string                `json:"description" validate:"omitempty,max=5000"`
	AssessmentType  *models.AssessmentType `json:"assessmentType"`
	QuestionFormat  models.FlexibleList    `json:"questionFormat"`
	InclusivityMode *bool                  `json:"inclusivityMode"`
	CourseID        *string                `json:"courseId" validate:"omitempty,max=36"`
}

// AssessmentUpdateRequest is a partial patch; nil fields keep their stored value
type AssessmentUpdateRequest struct {
	Title           *string                `json:"title" validate:"omitempty,max=200"`
	Description     *string                `json:"description" validate:"omitempty,max=5000"`
	AssessmentType  *models.AssessmentType `json:"assessmentType"`
	QuestionFormat  *models.FlexibleList   `json:"questionFormat"`
	InclusivityMode *bool                  `json:"inclusivityMode"`
	IsPublished     *bool                  `json:"isPublished"`
	CourseID        *string                `json:"courseId" validate:"omitempty,max=36"`
}

type QuestionCreateRequest struct {
	QuestionType         models.QuestionFormat        `json:"questionType" validate:"required"`
	Question             string                       `json:"question" validate:"required"`
	Options              models.FlexibleList          `json:"options"`
	CorrectAnswer        *string                      `json:"correctAnswer"`
	Marks                *int                         `json:"marks" validate:"omitempty,min=1,max=1000"`
	DifficultyLevel      *int                         `json:"difficultyLevel" validate:"omitempty,min=1,max=5"`
	AccessibilityOptions *models.AccessibilityOptions `json:"accessibilityOptions"`
}

// QuestionUpdateRequest is a partial patch; questionType may be repeated but not changed
type QuestionUpdateRequest struct {
	QuestionType         *models.QuestionFormat       `json:"questionType"`
	Question             *string                      `json:"question"`
	Options              *models.FlexibleList         `json:"options"`
	CorrectAnswer        *string                      `json:"correctAnswer"`
	Marks                *int                         `json:"marks" validate:"omitempty,min=1,max=1000"`
	DifficultyLevel      *int                         `json:"difficultyLevel" validate:"omitempty,min=1,max=5"`
	AccessibilityOptions *models.AccessibilityOptions `json:"accessibilityOptions"`
}

type AnswerInput struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

// SubmitResponsesRequest carries a candidate's answers; Answers is nil when the field was absent or null
type SubmitResponsesRequest struct {
	Answers *[]AnswerInput `json:"answers"`
}

type EvaluateResponseRequest struct {
	ResponseID string `json:"responseId" validate:"required"`
	IsCorrect  *bool  `json:"isCorrect"`
	Score      *int   `json:"score"`
}

type CourseCreateRequest struct {
	Title string `json:"title" validate:"required,max=500"`
}
