package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/utils"
)

// UserHandler exposes identity-provider profiles; instructors use it to resolve candidate ids
type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// GetCurrentUser returns the authenticated caller
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.Principal
// @Failure 401 {string} string "Unauthorized"
// @Router /api/users/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	c.JSON(http.StatusOK, caller)
}

// GetUser looks a profile up by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.Principal
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "User not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Getting user", "user_id", id)

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			writeError(c, http.StatusNotFound, "User not found")
			return
		}
		h.LogError(c, err, "Failed to get user", "user_id", id)
		writeError(c, http.StatusInternalServerError, "Internal Error")
		return
	}

	c.JSON(http.StatusOK, user)
}
