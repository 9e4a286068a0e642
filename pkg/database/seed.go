package database

import (
	"errors"

	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/model"
	"gorm.io/gorm"
)

// Seed creates the admin account and a starter catalog. Existing rows are left alone.
func Seed(db *gorm.DB, cfg *config.Config, hasher model.PasswordHasher) error {
	admin, err := SeedAdmin(db, cfg.Seed, hasher)
	if err != nil {
		return err
	}
	return SeedCatalog(db, admin)
}

// SeedAdmin creates the default admin user if not exists
func SeedAdmin(db *gorm.DB, seed config.SeedConfig, hasher model.PasswordHasher) (*model.User, error) {
	var existing model.User
	result := db.Where("email = ?", model.NormalizeEmail(seed.AdminEmail)).First(&existing)
	if result.Error == nil {
		return &existing, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	admin := model.NewUser(seed.AdminEmail, seed.AdminName, seed.AdminPassword, constants.RoleAdmin)
	admin.Security.EmailVerified = true
	if seed.AdminPasswordHash != "" {
		admin.SetPasswordHash(seed.AdminPasswordHash)
	}

	if err := db.Set(model.HasherSettingKey, hasher).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// SeedCatalog creates the introductory course and its quiz once
func SeedCatalog(db *gorm.DB, instructor *model.User) error {
	const slug = "prompt-engineering-fundamentals"

	var count int64
	if err := db.Model(&model.Course{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		course := &model.Course{
			Title:            "Prompt Engineering Fundamentals",
			Slug:             slug,
			ShortDescription: "Learn the building blocks of effective prompts.",
			Description:      "A hands-on introduction to prompt structure, context, role prompting and iterative refinement.",
			Difficulty:       constants.DifficultyBeginner,
			Category:         "Prompt Engineering",
			Tags:             []string{"prompting", "basics", "llm"},
			InstructorID:     instructor.ID,
			EstimatedHours:   4,
			IsPublished:      true,
			LearningObjectives: []string{
				"Structure prompts with clear instructions and context",
				"Use examples to steer model output",
				"Iterate on prompts using feedback",
			},
			Modules: []model.Module{
				{
					Title:       "Prompt Anatomy",
					Description: "What a prompt is made of.",
					Order:       1,
					Lessons: []model.Lesson{
						{Title: "Instructions and Context", Type: "theory", Duration: 15, Order: 1, IsPreview: true},
						{Title: "Few-shot Examples", Type: "practice", Duration: 20, Order: 2},
					},
				},
				{
					Title:       "Refinement",
					Description: "Improving prompts iteratively.",
					Order:       2,
					Lessons: []model.Lesson{
						{Title: "Evaluating Output", Type: "theory", Duration: 15, Order: 1},
						{Title: "Refinement Project", Type: "project", Duration: 45, Order: 2, XPReward: 250},
					},
				},
			},
		}
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		quiz := &model.Assessment{
			Title:       "Prompt Anatomy Quiz",
			Description: "Check your understanding of prompt structure.",
			CourseID:    course.ID,
			CreatedBy:   instructor.ID,
			IsActive:    true,
			Settings: model.AssessmentSettings{
				TimeLimit:    constants.DefaultAssessmentTime,
				PassingScore: constants.DefaultPassingScore,
				MaxAttempts:  constants.DefaultMaxAttempts,
				ShowResults:  true,
				AllowReview:  true,
			},
			Questions: []model.Question{
				{
					Type:          constants.QuestionMultipleChoice,
					Question:      "Which element tells the model what to do?",
					Options:       []string{"Instruction", "Temperature", "Token limit"},
					CorrectAnswer: []string{"Instruction"},
					Explanation:   "The instruction states the task.",
					Points:        10,
				},
				{
					Type:          constants.QuestionMultipleSelect,
					Question:      "Which of these usually improve a prompt?",
					Options:       []string{"Examples", "Clear context", "Ambiguity"},
					CorrectAnswer: []string{"Examples", "Clear context"},
					Explanation:   "Examples and context reduce ambiguity.",
					Points:        10,
				},
				{
					Type:          constants.QuestionShortAnswer,
					Question:      "What is giving the model a few worked examples called?",
					CorrectAnswer: []string{"few-shot prompting", "few-shot", "few shot"},
					Explanation:   "Few-shot prompting supplies examples in the prompt.",
					Points:        10,
				},
			},
		}
		return tx.Create(quiz).Error
	})
}
