package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID                 uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title              string                      `gorm:"column:title;size:200;not null" json:"title"`
	Description        string                      `gorm:"column:description;type:text;not null" json:"description"`
	ShortDescription   string                      `gorm:"column:short_description;size:300" json:"shortDescription,omitempty"`
	Slug               string                      `gorm:"column:slug;size:220;uniqueIndex;not null" json:"slug"`
	Difficulty         string                      `gorm:"column:difficulty;size:20;index;not null" json:"difficulty"`
	Category           string                      `gorm:"column:category;size:100;index;not null" json:"category"`
	Tags               datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	InstructorID       uuid.UUID                   `gorm:"column:instructor_id;type:uuid;index;not null" json:"instructorId"`
	Instructor         *User                       `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Modules            datatypes.JSONSlice[Module] `gorm:"column:modules" json:"modules"`
	Prerequisites      datatypes.JSONSlice[string] `gorm:"column:prerequisites" json:"prerequisites"`
	LearningObjectives datatypes.JSONSlice[string] `gorm:"column:learning_objectives" json:"learningObjectives"`
	EstimatedHours     float64                     `gorm:"column:estimated_hours" json:"estimatedHours"`
	Price              float64                     `gorm:"column:price" json:"price"`
	Thumbnail          string                      `gorm:"column:thumbnail" json:"thumbnail,omitempty"`
	IsPublished        bool                        `gorm:"column:is_published;index" json:"isPublished"`
	Stats              CourseStats                 `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	CreatedAt          time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

type CourseStats struct {
	Enrolled    int     `gorm:"column:enrolled;not null;default:0" json:"enrolled"`
	Completed   int     `gorm:"column:completed;not null;default:0" json:"completed"`
	Rating      float64 `gorm:"column:rating;not null;default:0" json:"rating"`
	ReviewCount int     `gorm:"column:review_count;not null;default:0" json:"reviewCount"`
}

type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Lessons     []Lesson `json:"lessons"`
}

type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Duration    int    `json:"duration"`
	Order       int    `json:"order"`
	IsPreview   bool   `json:"isPreview"`
	XPReward    int    `json:"xpReward"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave gives every module and lesson a stable id and a default XP reward.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.NormalizeModules()
	return nil
}

func (c *Course) NormalizeModules() {
	for i := range c.Modules {
		if c.Modules[i].ID == "" {
			c.Modules[i].ID = uuid.NewString()
		}
		for j := range c.Modules[i].Lessons {
			lesson := &c.Modules[i].Lessons[j]
			if lesson.ID == "" {
				lesson.ID = uuid.NewString()
			}
			if lesson.XPReward <= 0 {
				lesson.XPReward = constants.DefaultLessonXP
			}
		}
	}
}

// FindLesson returns the lesson with the given id and the id of its module.
func (c *Course) FindLesson(lessonID string) (Lesson, string, bool) {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return l, m.ID, true
			}
		}
	}
	return Lesson{}, "", false
}

func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

func (c *Course) IsOwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}
