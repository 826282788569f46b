package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eklavya-edu/assessment-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func newBusinessValidator(validate *validator.Validate) *BusinessValidator {
	return &BusinessValidator{validate: validate}
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	return ToValidationErrors(bv.validate.Struct(s))
}

func (bv *BusinessValidator) ValidateAssessmentCreate(req *AssessmentCreateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.Title) == "" && !hasField(errors, "title") {
		errors = append(errors, ValidationError{Field: "title", Message: "is required", Rule: "required"})
	}
	errors = append(errors, validateAssessmentType(req.AssessmentType)...)
	errors = append(errors, validateFormats(req.QuestionFormat)...)

	return errors
}

func (bv *BusinessValidator) ValidateAssessmentUpdate(req *AssessmentUpdateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "cannot be empty", Rule: "required"})
	}
	errors = append(errors, validateAssessmentType(req.AssessmentType)...)
	if req.QuestionFormat != nil {
		errors = append(errors, validateFormats(*req.QuestionFormat)...)
	}

	return errors
}

func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.Question) == "" && !hasField(errors, "question") {
		errors = append(errors, ValidationError{Field: "question", Message: "is required", Rule: "required"})
	}
	if req.QuestionType != "" && !req.QuestionType.IsValid() {
		errors = append(errors, ValidationError{
			Field:   "questionType",
			Message: "must be one of " + formatList(),
			Value:   req.QuestionType,
			Rule:    "question_type",
		})
	}
	if req.QuestionType == models.FormatMCQ {
		errors = append(errors, validateMCQ(req.Options, req.CorrectAnswer)...)
	}

	return errors
}

// ValidateQuestionUpdate checks the patch against the stored question it would produce
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	errors := bv.Validate(req)

	if req.QuestionType != nil && *req.QuestionType != existing.QuestionType {
		errors = append(errors, ValidationError{
			Field:   "questionType",
			Message: "cannot be changed after creation",
			Value:   *req.QuestionType,
			Rule:    "immutable",
		})
	}
	if req.Question != nil && strings.TrimSpace(*req.Question) == "" {
		errors = append(errors, ValidationError{Field: "question", Message: "cannot be empty", Rule: "required"})
	}

	if existing.IsMCQ() && (req.Options != nil || req.CorrectAnswer != nil) {
		options := models.FlexibleList(existing.Options)
		if req.Options != nil {
			options = *req.Options
		}
		correct := existing.CorrectAnswer
		if req.CorrectAnswer != nil {
			correct = req.CorrectAnswer
		}
		errors = append(errors, validateMCQ(options, correct)...)
	}

	return errors
}

// ValidateSubmission requires an answers array, possibly empty
func (bv *BusinessValidator) ValidateSubmission(req *SubmitResponsesRequest) ValidationErrors {
	if req.Answers == nil {
		return ValidationErrors{{Field: "answers", Message: "must be an array", Rule: "required"}}
	}

	var errors ValidationErrors
	for i, a := range *req.Answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("answers[%d].questionId", i),
				Message: "is required",
				Rule:    "required",
			})
		}
	}
	return errors
}

// ValidateScore bounds an awarded score by the question's marks
func (bv *BusinessValidator) ValidateScore(score *int, marks int) ValidationErrors {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > marks {
		return ValidationErrors{{
			Field:   "score",
			Message: fmt.Sprintf("must be between 0 and %d", marks),
			Value:   *score,
			Rule:    "score_range",
		}}
	}
	return nil
}

func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	errors := bv.Validate(req)
	if strings.TrimSpace(req.Title) == "" && !hasField(errors, "title") {
		errors = append(errors, ValidationError{Field: "title", Message: "is required", Rule: "required"})
	}
	return errors
}

func validateAssessmentType(t *models.AssessmentType) ValidationErrors {
	if t == nil || t.IsValid() {
		return nil
	}
	return ValidationErrors{{
		Field:   "assessmentType",
		Message: "must be one of ONLINE OFFLINE BLENDED",
		Value:   *t,
		Rule:    "assessment_type",
	}}
}

func validateFormats(formats models.FlexibleList) ValidationErrors {
	var errors ValidationErrors
	for _, f := range formats.QuestionFormats() {
		if !f.IsValid() {
			errors = append(errors, ValidationError{
				Field:   "questionFormat",
				Message: "must contain only " + formatList(),
				Value:   f,
				Rule:    "question_format",
			})
		}
	}
	return errors
}

func validateMCQ(options models.FlexibleList, correctAnswer *string) ValidationErrors {
	var errors ValidationErrors

	trimmed := options.Trimmed()
	if len(trimmed) == 0 {
		errors = append(errors, ValidationError{Field: "options", Message: "MCQ requires at least one option", Rule: "mcq_options"})
	}
	for i, o := range trimmed {
		if o == "" {
			errors = append(errors, ValidationError{Field: fmt.Sprintf("options[%d]", i), Message: "cannot be empty", Rule: "mcq_options"})
		}
	}

	switch {
	case correctAnswer == nil || strings.TrimSpace(*correctAnswer) == "":
		errors = append(errors, ValidationError{Field: "correctAnswer", Message: "MCQ requires a correct answer", Rule: "mcq_answer"})
	case len(trimmed) > 0 && !slices.Contains(trimmed, strings.TrimSpace(*correctAnswer)):
		errors = append(errors, ValidationError{
			Field:   "correctAnswer",
			Message: "must be one of the options",
			Value:   *correctAnswer,
			Rule:    "mcq_answer",
		})
	}

	return errors
}

func formatList() string {
	names := make([]string, len(models.AllQuestionFormats))
	for i, f := range models.AllQuestionFormats {
		names[i] = string(f)
	}
	return strings.Join(names, " ")
}

func hasField(errors ValidationErrors, field string) bool {
	for _, e := range errors {
		if e.Field == field {
			return true
		}
	}
	return false
}
