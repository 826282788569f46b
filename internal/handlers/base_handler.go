package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/utils"
)

// BaseHandler carries the logging and error plumbing shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	utils.GetLogger(c, h.logger).Debug(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	utils.GetLogger(c, h.logger).Error(msg, args...)
}

// writeError replies with a plain-text reason
func writeError(c *gin.Context, status int, message string) {
	c.String(status, message)
	c.Abort()
}

func (h *BaseHandler) parseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		writeError(c, http.StatusBadRequest, "Missing "+param)
		return ""
	}
	return id
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.LogRequest(c, "Rejected request body", "error", err)
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// caller returns the authenticated principal, replying 401 when there is none
func (h *BaseHandler) caller(c *gin.Context) *models.Principal {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	return principal
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		writeError(c, http.StatusBadRequest, validationErrors.Error())
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		utils.GetLogger(c, h.logger).Info("Permission denied",
			"user_id", permissionError.UserID,
			"resource", permissionError.Resource,
			"resource_id", permissionError.ResourceID,
			"action", permissionError.Action)
		writeError(c, http.StatusForbidden, "Forbidden: "+permissionError.Reason)
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrForbidden):
		writeError(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrAssessmentNotFound):
		writeError(c, http.StatusNotFound, "Assessment not found")
	case errors.Is(err, services.ErrQuestionNotFound):
		writeError(c, http.StatusNotFound, "Question not found")
	case errors.Is(err, services.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, services.ErrResponseNotFound):
		writeError(c, http.StatusNotFound, "Response not found")
	case errors.Is(err, services.ErrCourseNotFound):
		writeError(c, http.StatusNotFound, "Course not found")
	default:
		h.LogError(c, err, "Unexpected service error")
		writeError(c, http.StatusInternalServerError, "Internal Error")
	}
}

// parseNestedIDParams reads the assessment id and the id of a resource below it
func (h *BaseHandler) parseNestedIDParams(c *gin.Context, child string) (string, string, bool) {
	parentID := h.parseStringIDParam(c, "id")
	if parentID == "" {
		return "", "", false
	}
	childID := h.parseStringIDParam(c, child)
	return parentID, childID, childID != ""
}
