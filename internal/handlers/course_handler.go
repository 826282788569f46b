package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/utils"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// ListCourses searches the published catalog
// @Summary List courses
// @Tags courses
// @Produce json
// @Param title query string false "Title substring"
// @Param categoryId query string false "Category ID"
// @Success 200 {array} models.CourseWithProgress
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	filters := repositories.CourseFilters{
		Title:      c.Query("title"),
		CategoryID: c.Query("categoryId"),
	}
	h.LogRequest(c, "Listing courses", "title", filters.Title, "category_id", filters.CategoryID)

	courses, err := h.courseService.List(c.Request.Context(), filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseWithProgress
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Internal Error"
// @Router /api/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}
	courseID := h.parseStringIDParam(c, "id")
	if courseID == "" {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), courseID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body validator.CourseCreateRequest true "Course data"
// @Success 200 {object} models.Course
// @Failure 400 {string} string "Validation error"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {string} string "Internal Error"
// @Router /api/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	var req validator.CourseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Summary List categories
// @Tags courses
// @Produce json
// @Success 200 {array} models.Category
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/categories [get]
func (h *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := h.courseService.Categories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetDashboardCourses splits purchased courses into completed and in progress
// @Summary Dashboard courses
// @Tags courses
// @Produce json
// @Success 200 {object} models.DashboardCourses
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Internal Error"
// @Router /api/dashboard/courses [get]
func (h *CourseHandler) GetDashboardCourses(c *gin.Context) {
	caller := h.caller(c)
	if caller == nil {
		return
	}

	dashboard, err := h.courseService.Dashboard(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
