package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := c.withDetails(c.db.WithContext(ctx)).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, wrapNotFound(err, "course")
	}
	return &course, nil
}

func (c *CoursePostgreSQL) ListPublished(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	query := c.withDetails(c.db.WithContext(ctx)).Where("courses.is_published = ?", true)
	if filters.Title != "" {
		query = query.Where(`courses.title ILIKE ? ESCAPE '\'`, containsPattern(filters.Title))
	}
	if filters.CategoryID != "" {
		query = query.Where("courses.category_id = ?", filters.CategoryID)
	}

	var courses []*models.Course
	if err := query.Order("courses.created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) ListPurchased(ctx context.Context, userID string) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.withDetails(c.db.WithContext(ctx)).
		Joins("JOIN purchases ON purchases.course_id = courses.id").
		Where("purchases.user_id = ?", userID).
		Order("purchases.created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased courses: %w", err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) PurchasedCourseIDs(ctx context.Context, userID string, courseIDs []string) (map[string]bool, error) {
	purchased := make(map[string]bool)
	if len(courseIDs) == 0 {
		return purchased, nil
	}

	var ids []string
	err := c.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	for _, id := range ids {
		purchased[id] = true
	}
	return purchased, nil
}

// withDetails preloads the category and published chapters in position order
func (c *CoursePostgreSQL) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ?", true).Order("position ASC")
		})
}

type CategoryPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryPostgreSQL(db *gorm.DB) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db}
}

func (c *CategoryPostgreSQL) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) CountPublishedChapters(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return count, nil
}

func (p *ProgressPostgreSQL) CountCompletedChapters(ctx context.Context, userID, courseID string) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.UserProgress{}).
		Joins("JOIN chapters ON chapters.id = user_progress.chapter_id").
		Where("user_progress.user_id = ? AND user_progress.is_completed = ?", userID, true).
		Where("chapters.course_id = ? AND chapters.is_published = ?", courseID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed chapters: %w", err)
	}
	return count, nil
}
