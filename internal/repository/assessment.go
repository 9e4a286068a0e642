package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	ctx, err := begin(ctx, "CreateAssessment")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.db.WithContext(ctx).Create(assessment).Error
	finish(ctx, "Create assessment", start, err)

	return err
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	ctx, err := begin(ctx, "GetAssessmentByID")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var assessment model.Assessment
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error
	finish(ctx, "Get assessment by ID", start, err)
	if err != nil {
		return nil, err
	}

	return &assessment, nil
}

// CountAttempts returns how many attempts the user has submitted for the assessment
func (r *AssessmentRepository) CountAttempts(ctx context.Context, userID, assessmentID uuid.UUID) (int64, error) {
	ctx, err := begin(ctx, "CountAttempts")
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var count int64
	err = r.db.WithContext(ctx).
		Model(&model.AssessmentAttempt{}).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Count(&count).Error
	finish(ctx, "Count attempts", start, err)

	return count, err
}

func (r *AssessmentRepository) CreateAttempt(ctx context.Context, attempt *model.AssessmentAttempt) error {
	ctx, err := begin(ctx, "CreateAttempt")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.db.WithContext(ctx).Create(attempt).Error
	finish(ctx, "Create attempt", start, err)

	return err
}
