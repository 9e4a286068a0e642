package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
)

type LessonRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Type        string `json:"type" binding:"omitempty,oneof=video text interactive quiz theory practice project"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
	Duration    int    `json:"duration" binding:"gte=0"`
	Order       int    `json:"order" binding:"gte=0"`
	IsPreview   bool   `json:"isPreview"`
	XPReward    int    `json:"xpReward" binding:"gte=0"`
}

type ModuleRequest struct {
	ID          string          `json:"id"`
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Order       int             `json:"order" binding:"gte=0"`
	Lessons     []LessonRequest `json:"lessons" binding:"dive"`
}

type CreateCourseRequest struct {
	Title              string          `json:"title" binding:"required,min=3,max=200"`
	Description        string          `json:"description" binding:"required,max=5000"`
	ShortDescription   string          `json:"shortDescription" binding:"max=300"`
	Difficulty         string          `json:"difficulty" binding:"required,oneof=Beginner Intermediate Advanced"`
	Category           string          `json:"category" binding:"required,max=100"`
	Tags               []string        `json:"tags" binding:"max=20,dive,max=50"`
	Thumbnail          string          `json:"thumbnail" binding:"omitempty,url"`
	EstimatedHours     float64         `json:"estimatedHours" binding:"gte=0"`
	Price              float64         `json:"price" binding:"gte=0"`
	Prerequisites      []string        `json:"prerequisites" binding:"dive,max=200"`
	LearningObjectives []string        `json:"learningObjectives" binding:"dive,max=300"`
	Modules            []ModuleRequest `json:"modules" binding:"dive"`
	IsPublished        bool            `json:"isPublished"`
}

// UpdateCourseRequest only carries the fields that may change. Absent
// fields keep their stored value.
type UpdateCourseRequest struct {
	Title              *string          `json:"title" binding:"omitempty,min=3,max=200"`
	Description        *string          `json:"description" binding:"omitempty,max=5000"`
	ShortDescription   *string          `json:"shortDescription" binding:"omitempty,max=300"`
	Difficulty         *string          `json:"difficulty" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Category           *string          `json:"category" binding:"omitempty,max=100"`
	Tags               *[]string        `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Thumbnail          *string          `json:"thumbnail" binding:"omitempty,url"`
	EstimatedHours     *float64         `json:"estimatedHours" binding:"omitempty,gte=0"`
	Price              *float64         `json:"price" binding:"omitempty,gte=0"`
	Prerequisites      *[]string        `json:"prerequisites" binding:"omitempty,dive,max=200"`
	LearningObjectives *[]string        `json:"learningObjectives" binding:"omitempty,dive,max=300"`
	Modules            *[]ModuleRequest `json:"modules" binding:"omitempty,dive"`
	IsPublished        *bool            `json:"isPublished"`
}

// CourseListQuery is bound from the catalog query string.
type CourseListQuery struct {
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Category   string `form:"category" binding:"omitempty,max=100"`
	Tags       string `form:"tags" binding:"omitempty,max=200"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	SortBy     string `form:"sortBy" binding:"omitempty,oneof=newest popular rating title"`
}

type CourseResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description"`
	ShortDescription   string            `json:"shortDescription,omitempty"`
	Difficulty         string            `json:"difficulty"`
	Category           string            `json:"category"`
	Tags               []string          `json:"tags"`
	Thumbnail          string            `json:"thumbnail,omitempty"`
	EstimatedHours     float64           `json:"estimatedHours"`
	Price              float64           `json:"price"`
	Prerequisites      []string          `json:"prerequisites"`
	LearningObjectives []string          `json:"learningObjectives"`
	Modules            []model.Module    `json:"modules"`
	LessonCount        int               `json:"lessonCount"`
	IsPublished        bool              `json:"isPublished"`
	Stats              model.CourseStats `json:"stats"`
	InstructorID       uuid.UUID         `json:"instructorId"`
	Instructor         *UserSummary      `json:"instructor,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func NewCourseResponse(c *model.Course) CourseResponse {
	return CourseResponse{
		ID:                 c.ID,
		Title:              c.Title,
		Slug:               c.Slug,
		Description:        c.Description,
		ShortDescription:   c.ShortDescription,
		Difficulty:         c.Difficulty,
		Category:           c.Category,
		Tags:               nonNil(c.Tags),
		Thumbnail:          c.Thumbnail,
		EstimatedHours:     c.EstimatedHours,
		Price:              c.Price,
		Prerequisites:      nonNil(c.Prerequisites),
		LearningObjectives: nonNil(c.LearningObjectives),
		Modules:            nonNil(c.Modules),
		LessonCount:        c.LessonCount(),
		IsPublished:        c.IsPublished,
		Stats:              c.Stats,
		InstructorID:       c.InstructorID,
		Instructor:         NewUserSummary(c.Instructor),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// CourseDetailResponse adds the caller's progress when they are signed in.
type CourseDetailResponse struct {
	CourseResponse
	UserProgress *ProgressResponse `json:"userProgress"`
}

// ToModules converts request modules into the stored shape.
func ToModules(in []ModuleRequest) []model.Module {
	modules := make([]model.Module, 0, len(in))
	for _, m := range in {
		lessons := make([]model.Lesson, 0, len(m.Lessons))
		for _, l := range m.Lessons {
			lessons = append(lessons, model.Lesson{
				ID:          l.ID,
				Title:       l.Title,
				Description: l.Description,
				Type:        l.Type,
				Content:     l.Content,
				VideoURL:    l.VideoURL,
				Duration:    l.Duration,
				Order:       l.Order,
				IsPreview:   l.IsPreview,
				XPReward:    l.XPReward,
			})
		}
		modules = append(modules, model.Module{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Order:       m.Order,
			Lessons:     lessons,
		})
	}
	return modules
}
