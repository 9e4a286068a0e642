package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type progressStore interface {
	Get(ctx context.Context, userID, courseID uuid.UUID) (*model.Progress, error)
	ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) ([]model.Progress, error)
	Enroll(ctx context.Context, user *model.User, progress *model.Progress) error
	SaveLessonProgress(ctx context.Context, update repository.LessonUpdate) error
}

type courseFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// LearningService handles enrollment and lesson progress.
type LearningService struct {
	courses  courseFinder
	progress progressStore
	now      func() time.Time
}

func NewLearningService(courses courseFinder, progress progressStore, now func() time.Time) *LearningService {
	if now == nil {
		now = time.Now
	}
	return &LearningService{courses: courses, progress: progress, now: now}
}

// Enroll starts tracking progress for user in a published course.
func (s *LearningService) Enroll(ctx context.Context, user *model.User, courseID uuid.UUID) (*dto.ProgressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Enroll")

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !course.IsPublished {
		return nil, apperrors.ErrCourseNotFound
	}

	if _, err := s.progress.Get(ctx, user.ID, courseID); err == nil {
		return nil, apperrors.ErrAlreadyEnrolled
	} else if !repository.IsNotFound(err) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	progress := &model.Progress{
		UserID:         user.ID,
		CourseID:       courseID,
		Status:         constants.StatusInProgress,
		LastAccessedAt: s.now(),
	}
	if err := s.progress.Enroll(ctx, user, progress); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyEnrolled
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	progress.Course = course
	return dto.NewProgressResponse(progress), nil
}

func (s *LearningService) ListProgress(ctx context.Context, user *model.User, courseID *uuid.UUID) ([]dto.ProgressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "ListProgress")

	records, err := s.progress.ListByUser(ctx, user.ID, courseID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.ProgressResponse, 0, len(records))
	for i := range records {
		out = append(out, *dto.NewProgressResponse(&records[i]))
	}
	return out, nil
}

// UpdateProgress records activity on a lesson. Completing a lesson for the
// first time awards its XP; completing the last lesson completes the course.
func (s *LearningService) UpdateProgress(ctx context.Context, user *model.User, req dto.UpdateProgressRequest) (*dto.LessonProgressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateProgress")

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "courseId must be a valid UUID")
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	lesson, moduleID, ok := course.FindLesson(req.LessonID)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, "lesson not found in this course")
	}

	progress, err := s.progress.Get(ctx, user.ID, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrNotEnrolled
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := s.now()
	progress.ModuleID = moduleID
	progress.LessonID = lesson.ID
	progress.TimeSpent += req.TimeSpent
	progress.LastAccessedAt = now
	if req.Score != nil {
		progress.Score = req.Score
		progress.Attempts++
	}
	if notes := sanitizeText(req.Notes); notes != "" {
		progress.Notes = notes
	}

	lessonDone := req.Status == constants.StatusCompleted || (req.Progress != nil && *req.Progress == 100)

	update := repository.LessonUpdate{Progress: progress, User: user}
	xp := 0
	if lessonDone && progress.CompleteLesson(lesson.ID) {
		xp = lesson.XPReward
		if xp <= 0 {
			xp = constants.DefaultLessonXP
		}
		update.XP = xp
	}

	total := course.LessonCount()
	progress.Progress = completionPercent(len(progress.CompletedLessons), total)

	if progress.Status != constants.StatusCompleted {
		if total > 0 && len(progress.CompletedLessons) >= total {
			progress.Status = constants.StatusCompleted
			progress.CompletedAt = &now
			update.CourseCompleted = true
		} else {
			progress.Status = constants.StatusInProgress
		}
	}

	if err := s.progress.SaveLessonProgress(ctx, update); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Lesson progress updated").
		String("course_id", courseID.String()).
		String("lesson_id", lesson.ID).
		Int("progress", progress.Progress).
		Int("xp_awarded", xp).
		Bool("course_completed", update.CourseCompleted).
		Log()

	return &dto.LessonProgressResponse{
		Progress:        dto.NewProgressResponse(progress),
		XPAwarded:       xp,
		TotalXP:         user.Learning.TotalXP,
		Level:           user.Learning.Level,
		CourseCompleted: update.CourseCompleted,
	}, nil
}

func completionPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(done) * 100 / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}
