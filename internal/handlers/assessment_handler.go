package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/utils"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(assessmentService services.AssessmentService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
	}
}

// CreateAssessment creates a new assessment owned by the caller
// @Summary Create assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param assessment body validator.AssessmentCreateRequest true "Assessment data"
// @Success 201 {object} models.Assessment
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments [post]
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	var req validator.AssessmentCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating assessment", "user_id", caller.UserID)

	assessment, err := h.assessmentService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assessment)
}

// ListAssessments lists the caller's assessments, or published ones for candidates
// @Summary List assessments
// @Tags assessments
// @Produce json
// @Success 200 {array} models.Assessment
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	h.LogRequest(c, "Listing assessments", "user_id", caller.UserID)

	assessments, err := h.assessmentService.List(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

// GetAssessment retrieves an assessment by ID
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} models.Assessment
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Getting assessment", "assessment_id", id)

	assessment, err := h.assessmentService.Get(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// UpdateAssessment applies a partial patch
// @Summary Update assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param assessment body validator.AssessmentUpdateRequest true "Fields to change"
// @Success 200 {object} models.Assessment
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id} [patch]
func (h *AssessmentHandler) UpdateAssessment(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req validator.AssessmentUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating assessment", "assessment_id", id)

	assessment, err := h.assessmentService.Update(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// DeleteAssessment deletes an assessment with its questions and sessions
// @Summary Delete assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 204
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id} [delete]
func (h *AssessmentHandler) DeleteAssessment(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting assessment", "assessment_id", id)

	if err := h.assessmentService.Delete(c.Request.Context(), id, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPublishedAssessments is the candidate-facing catalog
// @Summary List published assessments
// @Tags published
// @Produce json
// @Success 200 {array} models.Assessment
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/published [get]
func (h *AssessmentHandler) ListPublishedAssessments(c *gin.Context) {
	h.LogRequest(c, "Listing published assessments")

	assessments, err := h.assessmentService.ListPublished(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

// @Summary Get published assessment
// @Tags published
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} models.Assessment
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/published/{id} [get]
func (h *AssessmentHandler) GetPublishedAssessment(c *gin.Context) {
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	assessment, err := h.assessmentService.GetPublished(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}
