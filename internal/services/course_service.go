package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/events"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
	"github.com/eklavya-edu/assessment-service/internal/validator"
)

const categoryListKey = "list"

type courseService struct {
	repo      repositories.Repository
	progress  ProgressService
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, progress ProgressService, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		progress:  progress,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// List returns published courses; progress is set only for courses the caller purchased
func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, caller *models.Principal) ([]*models.CourseWithProgress, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	filters.Title = strings.TrimSpace(filters.Title)
	courses, err := s.repo.Course().ListPublished(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	purchased, err := s.repo.Course().PurchasedCourseIDs(ctx, caller.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	result := make([]*models.CourseWithProgress, 0, len(courses))
	for _, c := range courses {
		entry := &models.CourseWithProgress{Course: *c}
		if purchased[c.ID] {
			progress, err := s.progress.GetProgress(ctx, caller.UserID, c.ID)
			if err != nil {
				return nil, err
			}
			entry.Progress = &progress
		}
		result = append(result, entry)
	}
	return result, nil
}

// Get returns one published course with the caller's progress when purchased
func (s *courseService) Get(ctx context.Context, id string, caller *models.Principal) (*models.CourseWithProgress, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsPublished {
		return nil, ErrCourseNotFound
	}

	purchased, err := s.repo.Course().PurchasedCourseIDs(ctx, caller.UserID, []string{course.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	result := &models.CourseWithProgress{Course: *course}
	if purchased[course.ID] {
		progress, err := s.progress.GetProgress(ctx, caller.UserID, course.ID)
		if err != nil {
			return nil, err
		}
		result.Progress = &progress
	}
	return result, nil
}

func (s *courseService) Create(ctx context.Context, req *validator.CourseCreateRequest, caller *models.Principal) (*models.Course, error) {
	if err := requireInstructor(caller, "", "course", "create"); err != nil {
		return nil, err
	}

	if errors := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errors) > 0 {
		return nil, errors
	}

	course := &models.Course{
		UserID: caller.UserID,
		Title:  strings.TrimSpace(req.Title),
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "user_id", caller.UserID)
	events.PublishAndLog(ctx, s.publisher, s.logger, events.NewEvent(events.CourseCreated, caller.UserID, map[string]interface{}{
		"course_id": course.ID,
		"title":     course.Title,
	}))

	return course, nil
}

func (s *courseService) Categories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := s.cache.Category.CacheOrExecute(ctx, categoryListKey, &categories, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Category().List(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

// Dashboard splits the caller's purchased courses by whether every published chapter is done
func (s *courseService) Dashboard(ctx context.Context, caller *models.Principal) (*models.DashboardCourses, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	courses, err := s.repo.Course().ListPurchased(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased courses: %w", err)
	}

	dashboard := &models.DashboardCourses{
		CompletedCourses:  []models.CourseWithProgress{},
		CoursesInProgress: []models.CourseWithProgress{},
	}
	for _, c := range courses {
		progress, err := s.progress.GetProgress(ctx, caller.UserID, c.ID)
		if err != nil {
			return nil, err
		}

		entry := models.CourseWithProgress{Course: *c, Progress: &progress}
		if progress == 100 {
			dashboard.CompletedCourses = append(dashboard.CompletedCourses, entry)
		} else {
			dashboard.CoursesInProgress = append(dashboard.CoursesInProgress, entry)
		}
	}
	return dashboard, nil
}

type progressService struct {
	repo repositories.Repository
}

func NewProgressService(repo repositories.Repository) ProgressService {
	return &progressService{repo: repo}
}

func (s *progressService) GetProgress(ctx context.Context, userID, courseID string) (int, error) {
	total, err := s.repo.Progress().CountPublishedChapters(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	completed, err := s.repo.Progress().CountCompletedChapters(ctx, userID, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed chapters: %w", err)
	}
	return Percentage(int(completed), int(total)), nil
}
