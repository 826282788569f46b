package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/utils"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// @Summary List questions
// @Tags questions
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} models.Question
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	questions, err := h.questionService.List(c.Request.Context(), assessmentID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param question body validator.QuestionCreateRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	var req validator.QuestionCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating question", "assessment_id", assessmentID, "question_type", req.QuestionType)

	question, err := h.questionService.Create(c.Request.Context(), assessmentID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path string true "Assessment ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} models.Question
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Question not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/questions/{questionId} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, questionID, ok := h.parseNestedIDParams(c, "questionId")
	if !ok {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), assessmentID, questionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateQuestion applies a partial patch; the question type cannot change
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param questionId path string true "Question ID"
// @Param question body validator.QuestionUpdateRequest true "Fields to change"
// @Success 200 {object} models.Question
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Question not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/questions/{questionId} [patch]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, questionID, ok := h.parseNestedIDParams(c, "questionId")
	if !ok {
		return
	}

	var req validator.QuestionUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating question", "assessment_id", assessmentID, "question_id", questionID)

	question, err := h.questionService.Update(c.Request.Context(), assessmentID, questionID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path string true "Assessment ID"
// @Param questionId path string true "Question ID"
// @Success 204
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Question not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/questions/{questionId} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, questionID, ok := h.parseNestedIDParams(c, "questionId")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting question", "assessment_id", assessmentID, "question_id", questionID)

	if err := h.questionService.Delete(c.Request.Context(), assessmentID, questionID, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPublishedQuestions never exposes answer keys
// @Summary List published questions
// @Tags published
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} models.PublicQuestion
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/published/{id}/questions [get]
func (h *QuestionHandler) ListPublishedQuestions(c *gin.Context) {
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	questions, err := h.questionService.ListPublished(c.Request.Context(), assessmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
