package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Assessment struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string                        `gorm:"column:title;size:200;not null" json:"title"`
	Description string                        `gorm:"column:description;type:text" json:"description"`
	CourseID    uuid.UUID                     `gorm:"column:course_id;type:uuid;index;not null" json:"courseId"`
	ModuleID    string                        `gorm:"column:module_id" json:"moduleId,omitempty"`
	Questions   datatypes.JSONSlice[Question] `gorm:"column:questions" json:"questions"`
	Settings    AssessmentSettings            `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	IsActive    bool                          `gorm:"column:is_active;index" json:"isActive"`
	CreatedBy   uuid.UUID                     `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time                     `json:"createdAt"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
}

type AssessmentSettings struct {
	TimeLimit        int  `gorm:"column:time_limit" json:"timeLimit"`
	PassingScore     int  `gorm:"column:passing_score" json:"passingScore"`
	MaxAttempts      int  `gorm:"column:max_attempts" json:"maxAttempts"`
	ShuffleQuestions bool `gorm:"column:shuffle_questions" json:"shuffleQuestions"`
	ShowResults      bool `gorm:"column:show_results" json:"showResults"`
	AllowReview      bool `gorm:"column:allow_review" json:"allowReview"`
}

// Question is one graded item. CorrectAnswer holds a single answer for
// choice questions, the accepted variants for short answers, and the
// required keywords for scenario and code questions.
type Question struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer []string `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

type AssessmentAttempt struct {
	ID           uuid.UUID                           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID                           `gorm:"column:assessment_id;type:uuid;not null;index:idx_attempt_user_assessment,priority:2" json:"assessmentId"`
	UserID       uuid.UUID                           `gorm:"column:user_id;type:uuid;not null;index:idx_attempt_user_assessment,priority:1" json:"userId"`
	Answers      datatypes.JSONType[map[string]any]  `gorm:"column:answers" json:"answers"`
	Results      datatypes.JSONSlice[QuestionResult] `gorm:"column:results" json:"results"`
	Score        int                                 `gorm:"column:score;not null" json:"score"`
	Passed       bool                                `gorm:"column:passed;not null" json:"passed"`
	TimeSpent    int                                 `gorm:"column:time_spent" json:"timeSpent"`
	StartedAt    time.Time                           `gorm:"column:started_at" json:"startedAt"`
	CompletedAt  time.Time                           `gorm:"column:completed_at" json:"completedAt"`
	CreatedAt    time.Time                           `json:"createdAt"`
}

type QuestionResult struct {
	QuestionID     string   `json:"questionId"`
	Correct        bool     `json:"correct"`
	PointsEarned   int      `json:"pointsEarned"`
	PointsPossible int      `json:"pointsPossible"`
	CorrectAnswer  []string `json:"correctAnswer,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

func (Assessment) TableName() string { return "assessments" }

func (AssessmentAttempt) TableName() string { return "assessment_attempts" }

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for i := range a.Questions {
		if a.Questions[i].ID == "" {
			a.Questions[i].ID = uuid.NewString()
		}
	}
	return nil
}

func (a *Assessment) MaxPoints() int {
	total := 0
	for _, q := range a.Questions {
		total += q.Points
	}
	return total
}

func (a *AssessmentAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
