package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/storage"
	"github.com/eklavya-edu/assessment-service/internal/utils"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

const reportLocationHeader = "X-Report-Location"

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// SubmitResponses records a candidate's answers as one session
// @Summary Submit responses
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param responses body validator.SubmitResponsesRequest true "Answers"
// @Success 200 {object} models.SubmissionResult
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses [post]
func (h *SessionHandler) SubmitResponses(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	var req validator.SubmitResponsesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting responses", "assessment_id", assessmentID, "user_id", caller.UserID)

	result, err := h.sessionService.Submit(c.Request.Context(), assessmentID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary List sessions
// @Tags responses
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} models.Session
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), assessmentID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary Get session
// @Tags responses
// @Produce json
// @Param id path string true "Assessment ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Session not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses/{sessionId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, sessionID, ok := h.parseNestedIDParams(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), assessmentID, sessionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// EvaluateResponse grades one response and returns it
// @Summary Evaluate response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param sessionId path string true "Session ID"
// @Param evaluation body validator.EvaluateResponseRequest true "Grade"
// @Success 200 {object} models.Response
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Response not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses/{sessionId} [patch]
func (h *SessionHandler) EvaluateResponse(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, sessionID, ok := h.parseNestedIDParams(c, "sessionId")
	if !ok {
		return
	}

	var req validator.EvaluateResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Evaluating response", "session_id", sessionID, "response_id", req.ResponseID)

	response, err := h.sessionService.Evaluate(c.Request.Context(), assessmentID, sessionID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Auto-grade MCQ responses
// @Tags responses
// @Produce json
// @Param id path string true "Assessment ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Session not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses/{sessionId}/auto-grade [post]
func (h *SessionHandler) AutoGradeSession(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID, sessionID, ok := h.parseNestedIDParams(c, "sessionId")
	if !ok {
		return
	}

	h.LogRequest(c, "Auto-grading session", "session_id", sessionID)

	session, err := h.sessionService.AutoGrade(c.Request.Context(), assessmentID, sessionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ExportSessions streams the sessions workbook
// @Summary Export sessions
// @Tags responses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Assessment ID"
// @Success 200 {file} file
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Assessment not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/assessments/{id}/responses/export [get]
func (h *SessionHandler) ExportSessions(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	assessmentID := h.parseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	h.LogRequest(c, "Exporting sessions", "assessment_id", assessmentID)

	result, err := h.sessionService.Export(c.Request.Context(), assessmentID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.Location != "" {
		c.Header(reportLocationHeader, result.Location)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, storage.XLSXContentType, result.Data)
}
