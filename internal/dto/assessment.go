package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
)

type QuestionRequest struct {
	Type          string   `json:"type" binding:"required,oneof=multiple-choice multiple-select true-false short-answer scenario code"`
	Question      string   `json:"question" binding:"required,max=2000"`
	Options       []string `json:"options" binding:"dive,max=500"`
	CorrectAnswer []string `json:"correctAnswer" binding:"required,min=1,dive,max=500"`
	Explanation   string   `json:"explanation" binding:"max=2000"`
	Points        int      `json:"points" binding:"gte=0,lte=1000"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags          []string `json:"tags" binding:"dive,max=50"`
}

type AssessmentSettingsRequest struct {
	TimeLimit        int   `json:"timeLimit" binding:"gte=0"`
	PassingScore     int   `json:"passingScore" binding:"gte=0,lte=100"`
	MaxAttempts      int   `json:"maxAttempts" binding:"gte=0"`
	ShuffleQuestions bool  `json:"shuffleQuestions"`
	ShowResults      *bool `json:"showResults"`
	AllowReview      *bool `json:"allowReview"`
}

type CreateAssessmentRequest struct {
	Title       string                    `json:"title" binding:"required,min=3,max=200"`
	Description string                    `json:"description" binding:"max=2000"`
	CourseID    string                    `json:"courseId" binding:"required,uuid"`
	ModuleID    string                    `json:"moduleId" binding:"max=64"`
	Questions   []QuestionRequest         `json:"questions" binding:"required,min=1,dive"`
	Settings    AssessmentSettingsRequest `json:"settings"`
}

type SubmitAssessmentRequest struct {
	Answers   map[string]any `json:"answers" binding:"required"`
	TimeSpent int            `json:"timeSpent" binding:"gte=0"`
	StartedAt *time.Time     `json:"startedAt"`
}

// QuestionView is a question as shown to a learner, without answers.
type QuestionView struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Question   string   `json:"question"`
	Options    []string `json:"options,omitempty"`
	Points     int      `json:"points"`
	Difficulty string   `json:"difficulty,omitempty"`
}

type AssessmentResponse struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	CourseID    uuid.UUID                `json:"courseId"`
	ModuleID    string                   `json:"moduleId,omitempty"`
	Questions   []QuestionView           `json:"questions"`
	Settings    model.AssessmentSettings `json:"settings"`
	TotalPoints int                      `json:"totalPoints"`
}

func NewAssessmentResponse(a *model.Assessment) AssessmentResponse {
	questions := make([]QuestionView, 0, len(a.Questions))
	for _, q := range a.Questions {
		questions = append(questions, QuestionView{
			ID:         q.ID,
			Type:       q.Type,
			Question:   q.Question,
			Options:    q.Options,
			Points:     q.Points,
			Difficulty: q.Difficulty,
		})
	}

	return AssessmentResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		CourseID:    a.CourseID,
		ModuleID:    a.ModuleID,
		Questions:   questions,
		Settings:    a.Settings,
		TotalPoints: a.MaxPoints(),
	}
}

type SubmissionResponse struct {
	AttemptID         uuid.UUID              `json:"attemptId"`
	Score             int                    `json:"score"`
	Passed            bool                   `json:"passed"`
	PassingScore      int                    `json:"passingScore"`
	PointsEarned      int                    `json:"pointsEarned"`
	PointsPossible    int                    `json:"pointsPossible"`
	Results           []model.QuestionResult `json:"results,omitempty"`
	AttemptNumber     int                    `json:"attemptNumber"`
	AttemptsRemaining int                    `json:"attemptsRemaining"`
}
