package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assessmentFixture struct {
	svc        *AssessmentService
	repo       *repository.AssessmentRepository
	instructor *model.User
	other      *model.User
	student    *model.User
	course     *model.Course
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)
	clock := testutil.NewClock(testStart)
	repo := repository.NewAssessmentRepository(db)
	instructor := testutil.CreateUser(t, db, hasher, "inst@example.com", "P@ssw0rd1", constants.RoleInstructor)

	return &assessmentFixture{
		svc:        NewAssessmentService(repo, repository.NewCourseRepository(db), clock.Now),
		repo:       repo,
		instructor: instructor,
		other:      testutil.CreateUser(t, db, hasher, "other@example.com", "P@ssw0rd1", constants.RoleInstructor),
		student:    testutil.CreateUser(t, db, hasher, "student@example.com", "P@ssw0rd1", constants.RoleStudent),
		course:     testutil.CreateCourse(t, db, instructor.ID, "Assessed Course", true),
	}
}

func quizRequest(courseID uuid.UUID) dto.CreateAssessmentRequest {
	return dto.CreateAssessmentRequest{
		Title:    "Prompt Quiz",
		CourseID: courseID.String(),
		Questions: []dto.QuestionRequest{
			{Type: constants.QuestionMultipleChoice, Question: "Best practice?", Options: []string{"Be vague", "Be specific"}, CorrectAnswer: []string{"Be specific"}, Explanation: "Specific prompts work better", Points: 10},
			{Type: constants.QuestionTrueFalse, Question: "Examples help?", Options: []string{"true", "false"}, CorrectAnswer: []string{"true"}, Points: 10},
		},
	}
}

func TestAssessmentService_CreateAppliesDefaults(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, quizRequest(f.course.ID), f.instructor)
	require.NoError(t, err)

	assert.Equal(t, 20, created.TotalPoints)
	assert.Equal(t, constants.DefaultPassingScore, created.Settings.PassingScore)
	assert.Equal(t, constants.DefaultMaxAttempts, created.Settings.MaxAttempts)
	assert.Equal(t, constants.DefaultAssessmentTime, created.Settings.TimeLimit)
	assert.True(t, created.Settings.ShowResults)
	require.Len(t, created.Questions, 2)
	assert.NotEmpty(t, created.Questions[0].ID)

	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, f.instructor.ID, stored.CreatedBy)
	assert.Equal(t, []string{"Be specific"}, stored.Questions[0].CorrectAnswer)
}

func TestAssessmentService_CreateRequiresCourseOwnership(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, quizRequest(f.course.ID), f.other)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = f.svc.Create(ctx, quizRequest(uuid.New()), f.instructor)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestAssessmentService_GetHidesAnswers(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, quizRequest(f.course.ID), f.instructor)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prompt Quiz", got.Title)
	assert.Equal(t, []string{"Be vague", "Be specific"}, got.Questions[0].Options)

	_, err = f.svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAssessmentNotFound)
}

func TestAssessmentService_SubmitAndAttemptLimit(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	req := quizRequest(f.course.ID)
	req.Settings.MaxAttempts = 2
	created, err := f.svc.Create(ctx, req, f.instructor)
	require.NoError(t, err)
	q1, q2 := created.Questions[0].ID, created.Questions[1].ID

	half, err := f.svc.Submit(ctx, f.student, created.ID, dto.SubmitAssessmentRequest{
		Answers:   map[string]any{q1: "be specific", q2: false},
		TimeSpent: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, half.Score)
	assert.False(t, half.Passed)
	assert.Equal(t, 1, half.AttemptNumber)
	assert.Equal(t, 1, half.AttemptsRemaining)
	require.Len(t, half.Results, 2)
	assert.Equal(t, "Specific prompts work better", half.Results[0].Explanation)

	full, err := f.svc.Submit(ctx, f.student, created.ID, dto.SubmitAssessmentRequest{
		Answers: map[string]any{q1: "Be specific", q2: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, full.Score)
	assert.True(t, full.Passed)
	assert.Zero(t, full.AttemptsRemaining)

	_, err = f.svc.Submit(ctx, f.student, created.ID, dto.SubmitAssessmentRequest{
		Answers: map[string]any{q1: "Be specific", q2: true},
	})
	assert.ErrorIs(t, err, apperrors.ErrMaxAttemptsReached)

	count, err := f.repo.CountAttempts(ctx, f.student.ID, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestAssessmentService_SubmitWithoutResults(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	hide := false
	req := quizRequest(f.course.ID)
	req.Settings.ShowResults = &hide
	created, err := f.svc.Create(ctx, req, f.instructor)
	require.NoError(t, err)

	resp, err := f.svc.Submit(ctx, f.student, created.ID, dto.SubmitAssessmentRequest{Answers: map[string]any{}})
	require.NoError(t, err)
	assert.Zero(t, resp.Score)
	assert.Empty(t, resp.Results)
}
