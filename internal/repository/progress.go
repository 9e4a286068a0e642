package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// LessonUpdate is the result of applying one lesson progress change. XP is
// added to the stored total and CourseCompleted appends the course to the
// stored list. User receives the resulting learning stats.
type LessonUpdate struct {
	Progress        *model.Progress
	User            *model.User
	XP              int
	CourseCompleted bool
}

func (r *ProgressRepository) Get(ctx context.Context, userID, courseID uuid.UUID) (*model.Progress, error) {
	ctx, err := begin(ctx, "GetProgress")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var progress model.Progress
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	finish(ctx, "Get progress", start, err)
	if err != nil {
		return nil, err
	}

	return &progress, nil
}

// ListByUser returns the user's progress records with their courses,
// optionally limited to one course.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) ([]model.Progress, error) {
	ctx, err := begin(ctx, "ListProgressByUser")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	query := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}

	var records []model.Progress
	err = query.Order("last_accessed_at DESC").Find(&records).Error
	finish(ctx, "List progress", start, err)

	return records, err
}

func (r *ProgressRepository) Save(ctx context.Context, progress *model.Progress) error {
	ctx, err := begin(ctx, "SaveProgress")
	if err != nil {
		return err
	}

	start := time.Now()
	err = translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(progress).Error)
	finish(ctx, "Save progress", start, err)

	return err
}

// Enroll creates the progress record, records the course on the user and
// bumps the course enrollment counter in one transaction. An existing
// enrollment yields ErrDuplicate.
func (r *ProgressRepository) Enroll(ctx context.Context, user *model.User, progress *model.Progress) error {
	ctx, err := begin(ctx, "Enroll")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := translate(tx.Omit(clause.Associations).Create(progress).Error); err != nil {
			return err
		}

		user.AddEnrolledCourse(progress.CourseID)
		if err := tx.Model(&model.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("enrolled_courses", user.Learning.EnrolledCourses).Error; err != nil {
			return err
		}

		return incrementCourseStat(tx, progress.CourseID, "stats_enrolled")
	})
	finish(ctx, "Enroll user", start, err)

	if err == nil {
		logger.InfoWithContext(ctx, "User enrolled in course").
			String("user_id", user.ID.String()).
			String("course_id", progress.CourseID.String()).
			Log()
	}

	return err
}

// SaveLessonProgress persists a lesson update together with the XP and
// completion side effects on the user and course.
func (r *ProgressRepository) SaveLessonProgress(ctx context.Context, update LessonUpdate) error {
	ctx, err := begin(ctx, "SaveLessonProgress")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(update.Progress).Error; err != nil {
			return err
		}

		if update.XP > 0 || update.CourseCompleted {
			if err := applyLearningDelta(tx, update); err != nil {
				return err
			}
		}

		if update.CourseCompleted {
			return incrementCourseStat(tx, update.Progress.CourseID, "stats_completed")
		}
		return nil
	})
	finish(ctx, "Save lesson progress", start, err)

	return err
}

// applyLearningDelta increments total_xp in SQL, which also takes the row
// lock, then derives level and completed_courses from the row as stored.
func applyLearningDelta(tx *gorm.DB, update LessonUpdate) error {
	userID := update.User.ID

	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", max(update.XP, 0))).Error; err != nil {
		return err
	}

	var fresh model.User
	if err := tx.Select("id", "total_xp", "level", "completed_courses").
		Where("id = ?", userID).
		First(&fresh).Error; err != nil {
		return err
	}

	fresh.SyncLevel()
	if update.CourseCompleted {
		fresh.AddCompletedCourse(update.Progress.CourseID)
	}

	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]any{
			"level":             fresh.Learning.Level,
			"completed_courses": fresh.Learning.CompletedCourses,
		}).Error; err != nil {
		return err
	}

	update.User.Learning.TotalXP = fresh.Learning.TotalXP
	update.User.Learning.Level = fresh.Learning.Level
	update.User.Learning.CompletedCourses = fresh.Learning.CompletedCourses
	return nil
}

func incrementCourseStat(tx *gorm.DB, courseID uuid.UUID, column string) error {
	return tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}
