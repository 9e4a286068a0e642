package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Progress tracks one user's advancement through one course.
type Progress struct {
	ID               uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_progress_user_course;index:idx_progress_user_status,priority:1" json:"userId"`
	CourseID         uuid.UUID                   `gorm:"column:course_id;type:uuid;not null;uniqueIndex:idx_progress_user_course" json:"courseId"`
	Course           *Course                     `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	ModuleID         string                      `gorm:"column:module_id" json:"moduleId,omitempty"`
	LessonID         string                      `gorm:"column:lesson_id" json:"lessonId,omitempty"`
	Status           string                      `gorm:"column:status;size:20;not null;index:idx_progress_user_status,priority:2" json:"status"`
	Progress         int                         `gorm:"column:progress;not null;default:0" json:"progress"`
	TimeSpent        int                         `gorm:"column:time_spent;not null;default:0" json:"timeSpent"`
	Attempts         int                         `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Score            *int                        `gorm:"column:score" json:"score,omitempty"`
	CompletedLessons datatypes.JSONSlice[string] `gorm:"column:completed_lessons" json:"completedLessons"`
	Bookmarks        datatypes.JSONSlice[string] `gorm:"column:bookmarks" json:"bookmarks"`
	Notes            string                      `gorm:"column:notes;type:text" json:"notes,omitempty"`
	LastAccessedAt   time.Time                   `gorm:"column:last_accessed_at;index" json:"lastAccessed"`
	CompletedAt      *time.Time                  `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (Progress) TableName() string { return "progress" }

func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = constants.StatusNotStarted
	}
	return nil
}

func (p *Progress) HasCompletedLesson(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson marks a lesson done and reports whether it was newly completed.
func (p *Progress) CompleteLesson(lessonID string) bool {
	if p.HasCompletedLesson(lessonID) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	return true
}
