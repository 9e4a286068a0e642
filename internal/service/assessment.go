package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
	"gorm.io/datatypes"
)

type assessmentStore interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	CountAttempts(ctx context.Context, userID, assessmentID uuid.UUID) (int64, error)
	CreateAttempt(ctx context.Context, attempt *model.AssessmentAttempt) error
}

type AssessmentService struct {
	assessments assessmentStore
	courses     courseFinder
	now         func() time.Time
}

func NewAssessmentService(assessments assessmentStore, courses courseFinder, now func() time.Time) *AssessmentService {
	if now == nil {
		now = time.Now
	}
	return &AssessmentService{assessments: assessments, courses: courses, now: now}
}

// Create adds an assessment to a course the caller manages.
func (s *AssessmentService) Create(ctx context.Context, req dto.CreateAssessmentRequest, caller *model.User) (*dto.AssessmentResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CreateAssessment")

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
	if !canManage(caller, course.InstructorID) {
		return nil, apperrors.WithMessage(apperrors.ErrCourseNotFound, "course not found or unauthorized")
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, model.Question{
			Type:          q.Type,
			Question:      sanitizeText(q.Question),
			Options:       sanitizeList(q.Options),
			CorrectAnswer: sanitizeList(q.CorrectAnswer),
			Explanation:   sanitizeText(q.Explanation),
			Points:        q.Points,
			Difficulty:    q.Difficulty,
			Tags:          normalizeTags(q.Tags),
		})
	}

	assessment := &model.Assessment{
		Title:       sanitizeText(req.Title),
		Description: sanitizeText(req.Description),
		CourseID:    course.ID,
		ModuleID:    req.ModuleID,
		Questions:   datatypes.JSONSlice[model.Question](questions),
		Settings:    assessmentSettings(req.Settings),
		IsActive:    true,
		CreatedBy:   caller.ID,
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create assessment").
			String("course_id", course.ID.String()).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Assessment created").
		String("assessment_id", assessment.ID.String()).
		String("course_id", course.ID.String()).
		Int("questions", len(questions)).
		Log()

	resp := dto.NewAssessmentResponse(assessment)
	return &resp, nil
}

func assessmentSettings(req dto.AssessmentSettingsRequest) model.AssessmentSettings {
	settings := model.AssessmentSettings{
		TimeLimit:        req.TimeLimit,
		PassingScore:     req.PassingScore,
		MaxAttempts:      req.MaxAttempts,
		ShuffleQuestions: req.ShuffleQuestions,
		ShowResults:      true,
		AllowReview:      true,
	}
	if settings.TimeLimit == 0 {
		settings.TimeLimit = constants.DefaultAssessmentTime
	}
	if settings.PassingScore == 0 {
		settings.PassingScore = constants.DefaultPassingScore
	}
	if settings.MaxAttempts == 0 {
		settings.MaxAttempts = constants.DefaultMaxAttempts
	}
	if req.ShowResults != nil {
		settings.ShowResults = *req.ShowResults
	}
	if req.AllowReview != nil {
		settings.AllowReview = *req.AllowReview
	}
	return settings
}

// Get returns an active assessment without its answers.
func (s *AssessmentService) Get(ctx context.Context, id uuid.UUID) (*dto.AssessmentResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "GetAssessment")

	assessment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewAssessmentResponse(assessment)
	return &resp, nil
}

func (s *AssessmentService) load(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrAssessmentNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !assessment.IsActive {
		return nil, apperrors.ErrAssessmentNotFound
	}
	return assessment, nil
}

// Submit grades the user's answers and records the attempt.
func (s *AssessmentService) Submit(ctx context.Context, user *model.User, id uuid.UUID, req dto.SubmitAssessmentRequest) (*dto.SubmissionResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SubmitAssessment")

	assessment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	used, err := s.assessments.CountAttempts(ctx, user.ID, assessment.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	maxAttempts := assessment.Settings.MaxAttempts
	if maxAttempts > 0 && int(used) >= maxAttempts {
		logger.WarnWithContext(ctx, "Assessment attempt limit reached").
			String("assessment_id", assessment.ID.String()).
			Int("attempts", int(used)).
			Log()
		return nil, apperrors.ErrMaxAttemptsReached
	}

	graded := grade(assessment, req.Answers)
	passingScore := assessment.Settings.PassingScore
	if passingScore == 0 {
		passingScore = constants.DefaultPassingScore
	}

	now := s.now()
	startedAt := now.Add(-time.Duration(req.TimeSpent) * time.Second)
	if req.StartedAt != nil && !req.StartedAt.After(now) {
		startedAt = *req.StartedAt
	}

	attempt := &model.AssessmentAttempt{
		AssessmentID: assessment.ID,
		UserID:       user.ID,
		Answers:      datatypes.NewJSONType(req.Answers),
		Results:      datatypes.JSONSlice[model.QuestionResult](graded.Results),
		Score:        graded.Score,
		Passed:       graded.Score >= passingScore,
		TimeSpent:    req.TimeSpent,
		StartedAt:    startedAt,
		CompletedAt:  now,
	}
	if err := s.assessments.CreateAttempt(ctx, attempt); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	attemptNumber := int(used) + 1
	remaining := 0
	if maxAttempts > 0 {
		remaining = maxAttempts - attemptNumber
	}

	logger.InfoWithContext(ctx, "Assessment submitted").
		String("assessment_id", assessment.ID.String()).
		String("attempt_id", attempt.ID.String()).
		Int("score", graded.Score).
		Bool("passed", attempt.Passed).
		Log()

	resp := &dto.SubmissionResponse{
		AttemptID:         attempt.ID,
		Score:             graded.Score,
		Passed:            attempt.Passed,
		PassingScore:      passingScore,
		PointsEarned:      graded.PointsEarned,
		PointsPossible:    graded.PointsPossible,
		AttemptNumber:     attemptNumber,
		AttemptsRemaining: remaining,
	}
	if assessment.Settings.ShowResults {
		resp.Results = graded.Results
	}
	return resp, nil
}
