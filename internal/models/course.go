package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID   string `json:"id" gorm:"primaryKey;size:36"`
	Name string `json:"name" gorm:"not null;uniqueIndex;size:100"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Course struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	UserID      string   `json:"userId" gorm:"not null;size:255;index"`
	Title       string   `json:"title" gorm:"type:text;not null"`
	Description *string  `json:"description" gorm:"type:text"`
	ImageURL    *string  `json:"imageUrl" gorm:"type:text"`
	Price       *float64 `json:"price"`
	IsPublished bool     `json:"isPublished" gorm:"not null;default:false;index"`
	CategoryID  *string  `json:"categoryId" gorm:"size:36;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:CourseID"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Chapter struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CourseID    string    `json:"courseId" gorm:"not null;size:36;index"`
	Title       string    `json:"title" gorm:"not null"`
	Position    int       `json:"position"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Purchase struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_purchase_user_course"`
	CourseID  string    `json:"courseId" gorm:"not null;size:36;uniqueIndex:idx_purchase_user_course"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type UserProgress struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_progress_user_chapter"`
	ChapterID   string    `json:"chapterId" gorm:"not null;size:36;uniqueIndex:idx_progress_user_chapter"`
	IsCompleted bool      `json:"isCompleted" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// CourseWithProgress is a catalog entry; Progress is nil when the caller has not purchased the course
type CourseWithProgress struct {
	Course
	Progress *int `json:"progress"`
}
