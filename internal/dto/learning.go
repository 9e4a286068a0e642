package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
)

type EnrollRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
}

type UpdateProgressRequest struct {
	CourseID  string `json:"courseId" binding:"required,uuid"`
	ModuleID  string `json:"moduleId" binding:"max=64"`
	LessonID  string `json:"lessonId" binding:"required,max=64"`
	Status    string `json:"status" binding:"omitempty,oneof=not-started in-progress completed"`
	Progress  *int   `json:"progress" binding:"omitempty,gte=0,lte=100"`
	TimeSpent int    `json:"timeSpent" binding:"gte=0"`
	Score     *int   `json:"score" binding:"omitempty,gte=0,lte=100"`
	Notes     string `json:"notes" binding:"max=5000"`
}

type ProgressQuery struct {
	CourseID string `form:"courseId" binding:"omitempty,uuid"`
}

type ProgressResponse struct {
	ID               uuid.UUID       `json:"id"`
	CourseID         uuid.UUID       `json:"courseId"`
	Course           *CourseResponse `json:"course,omitempty"`
	ModuleID         string          `json:"moduleId,omitempty"`
	LessonID         string          `json:"lessonId,omitempty"`
	Status           string          `json:"status"`
	Progress         int             `json:"progress"`
	TimeSpent        int             `json:"timeSpent"`
	Score            *int            `json:"score,omitempty"`
	CompletedLessons []string        `json:"completedLessons"`
	Bookmarks        []string        `json:"bookmarks"`
	Notes            string          `json:"notes,omitempty"`
	LastAccessed     time.Time       `json:"lastAccessed"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

func NewProgressResponse(p *model.Progress) *ProgressResponse {
	if p == nil {
		return nil
	}

	resp := &ProgressResponse{
		ID:               p.ID,
		CourseID:         p.CourseID,
		ModuleID:         p.ModuleID,
		LessonID:         p.LessonID,
		Status:           p.Status,
		Progress:         p.Progress,
		TimeSpent:        p.TimeSpent,
		Score:            p.Score,
		CompletedLessons: nonNil(p.CompletedLessons),
		Bookmarks:        nonNil(p.Bookmarks),
		Notes:            p.Notes,
		LastAccessed:     p.LastAccessedAt,
		CompletedAt:      p.CompletedAt,
	}
	if p.Course != nil {
		course := NewCourseResponse(p.Course)
		resp.Course = &course
	}
	return resp
}

// LessonProgressResponse reports the effect of a progress update.
type LessonProgressResponse struct {
	Progress        *ProgressResponse `json:"progress"`
	XPAwarded       int               `json:"xpAwarded"`
	TotalXP         int               `json:"totalXp"`
	Level           int               `json:"level"`
	CourseCompleted bool              `json:"courseCompleted"`
}
