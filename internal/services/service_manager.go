package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/storage"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

// ServiceDependencies carries the collaborators shared by every service.
// Publisher and Reports are optional.
type ServiceDependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Reports   storage.ReportStore
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps ServiceDependencies

	assessmentService AssessmentService
	questionService   QuestionService
	sessionService    SessionService
	courseService     CourseService
	progressService   ProgressService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps ServiceDependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &serviceManager{deps: deps}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.deps.Repo == nil {
		return fmt.Errorf("repository is required")
	}

	d := sm.deps
	d.Logger.Info("Initializing service manager")

	sm.assessmentService = NewAssessmentService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.questionService = NewQuestionService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.sessionService = NewSessionService(d.Repo, d.Publisher, d.Reports, d.Logger, d.Validator)
	sm.progressService = NewProgressService(d.Repo)
	sm.courseService = NewCourseService(d.Repo, sm.progressService, d.Cache, d.Publisher, d.Logger, d.Validator)

	sm.initialized = true
	d.Logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) Assessment() AssessmentService {
	sm.mustBeInitialized()
	return sm.assessmentService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mustBeInitialized()
	return sm.questionService
}

func (sm *serviceManager) Session() SessionService {
	sm.mustBeInitialized()
	return sm.sessionService
}

func (sm *serviceManager) Course() CourseService {
	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mustBeInitialized()
	return sm.progressService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher; the repository is owned by its manager
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")
	return nil
}
