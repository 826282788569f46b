package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/services"
	"github.com/eklavya-edu/assessment-service/internal/utils"
	"github.com/eklavya-edu/assessment-service/pkg/monitoring"
)

const healthCheckTimeout = 3 * time.Second

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	questionHandler   *QuestionHandler
	sessionHandler    *SessionHandler
	courseHandler     *CourseHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware

	serviceManager services.ServiceManager
	cacheManager   *cache.CacheManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	userRepo repositories.UserRepository,
	cacheManager *cache.CacheManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), logger),
		sessionHandler:    NewSessionHandler(serviceManager.Session(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		userHandler:       NewUserHandler(userRepo, logger),
		authMiddleware:    NewCasdoorAuthMiddleware(userRepo, logger),
		serviceManager:    serviceManager,
		cacheManager:      cacheManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	instructorOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor)

	api := router.Group("/api")
	api.Use(hm.authMiddleware.AuthMiddleware())
	{
		assessments := api.Group("/assessments")
		{
			// Published catalog - all authenticated users
			assessments.GET("/published", hm.assessmentHandler.ListPublishedAssessments)
			assessments.GET("/published/:id", hm.assessmentHandler.GetPublishedAssessment)
			assessments.GET("/published/:id/questions", hm.questionHandler.ListPublishedQuestions)

			// Assessment registry
			assessments.POST("", hm.assessmentHandler.CreateAssessment)
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.PATCH("/:id", hm.assessmentHandler.UpdateAssessment)
			assessments.DELETE("/:id", hm.assessmentHandler.DeleteAssessment)

			// Question bank - owning instructor only
			questions := assessments.Group("/:id/questions", instructorOnly)
			{
				questions.GET("", hm.questionHandler.ListQuestions)
				questions.POST("", hm.questionHandler.CreateQuestion)
				questions.GET("/:questionId", hm.questionHandler.GetQuestion)
				questions.PATCH("/:questionId", hm.questionHandler.UpdateQuestion)
				questions.DELETE("/:questionId", hm.questionHandler.DeleteQuestion)
			}

			// Candidates submit; the owning instructor reviews and grades
			assessments.POST("/:id/responses", hm.sessionHandler.SubmitResponses)
			responses := assessments.Group("/:id/responses", instructorOnly)
			{
				responses.GET("", hm.sessionHandler.ListSessions)
				responses.GET("/export", hm.sessionHandler.ExportSessions)
				responses.GET("/:sessionId", hm.sessionHandler.GetSession)
				responses.PATCH("/:sessionId", hm.sessionHandler.EvaluateResponse)
				responses.POST("/:sessionId/auto-grade", hm.sessionHandler.AutoGradeSession)
			}
		}

		courses := api.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("/:id", hm.courseHandler.GetCourse)
		}
		api.GET("/categories", hm.courseHandler.ListCategories)
		api.GET("/dashboard/courses", hm.courseHandler.GetDashboardCourses)

		users := api.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetCurrentUser)
			users.GET("/:id", instructorOnly, hm.userHandler.GetUser)
		}
	}

	router.GET("/health", hm.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())
}

// HealthCheck pings the database and, when configured, Redis
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := hm.cacheManager.HealthCheck(ctx); err != nil {
		if errors.Is(err, cache.ErrCacheNotAvailable) {
			checks["cache"] = "disabled"
		} else {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "assessment-service",
		"checks":  checks,
	})
}
