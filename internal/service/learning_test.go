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
	"gorm.io/gorm"
)

type learningFixture struct {
	db      *gorm.DB
	users   *repository.UserRepository
	courses *repository.CourseRepository
	svc     *LearningService
	student *model.User
	course  *model.Course
}

func newLearningFixture(t *testing.T) *learningFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)
	clock := testutil.NewClock(testStart)
	courses := repository.NewCourseRepository(db)
	instructor := testutil.CreateUser(t, db, hasher, "inst@example.com", "P@ssw0rd1", constants.RoleInstructor)

	return &learningFixture{
		db:      db,
		users:   repository.NewUserRepository(db, hasher),
		courses: courses,
		svc:     NewLearningService(courses, repository.NewProgressRepository(db), clock.Now),
		student: testutil.CreateUser(t, db, hasher, "learner@example.com", "P@ssw0rd1", constants.RoleStudent),
		course:  testutil.CreateCourse(t, db, instructor.ID, "Prompt Basics", true),
	}
}

func (f *learningFixture) lessonIDs() []string {
	var ids []string
	for _, m := range f.course.Modules {
		for _, l := range m.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func completed(courseID uuid.UUID, lessonID string) dto.UpdateProgressRequest {
	return dto.UpdateProgressRequest{
		CourseID:  courseID.String(),
		LessonID:  lessonID,
		Status:    constants.StatusCompleted,
		TimeSpent: 60,
	}
}

func TestLearningService_Enroll(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	progress, err := f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusInProgress, progress.Status)
	assert.Zero(t, progress.Progress)

	_, err = f.svc.Enroll(ctx, f.student, f.course.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	user, err := f.users.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.course.ID}, []uuid.UUID(user.Learning.EnrolledCourses))

	course, err := f.courses.GetByID(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.Stats.Enrolled)
}

func TestLearningService_EnrollRejectsMissingAndDraft(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, f.student, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	draft := testutil.CreateCourse(t, f.db, f.course.InstructorID, "Unreleased", false)
	_, err = f.svc.Enroll(ctx, f.student, draft.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestLearningService_UpdateProgressRequiresEnrollment(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, f.lessonIDs()[0]))
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	_, err = f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, "no-such-lesson"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLearningService_XPAndCompletion(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	lessons := f.lessonIDs()
	require.Len(t, lessons, 4)

	_, err := f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	first, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, lessons[0]))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLessonXP, first.XPAwarded)
	assert.Equal(t, 25, first.Progress.Progress)
	assert.Equal(t, lessons[0], first.Progress.LessonID)
	assert.False(t, first.CourseCompleted)

	again, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, lessons[0]))
	require.NoError(t, err)
	assert.Zero(t, again.XPAwarded, "a lesson pays out once")
	assert.Equal(t, 120, again.Progress.TimeSpent)

	pct := 100
	second, err := f.svc.UpdateProgress(ctx, f.student, dto.UpdateProgressRequest{
		CourseID: f.course.ID.String(),
		LessonID: lessons[1],
		Progress: &pct,
	})
	require.NoError(t, err)
	assert.Equal(t, 250, second.XPAwarded)
	assert.Equal(t, 50, second.Progress.Progress)

	partial := 40
	viewing, err := f.svc.UpdateProgress(ctx, f.student, dto.UpdateProgressRequest{
		CourseID: f.course.ID.String(),
		LessonID: lessons[2],
		Progress: &partial,
	})
	require.NoError(t, err)
	assert.Zero(t, viewing.XPAwarded)
	assert.Equal(t, 50, viewing.Progress.Progress)

	_, err = f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, lessons[2]))
	require.NoError(t, err)
	last, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, lessons[3]))
	require.NoError(t, err)

	assert.True(t, last.CourseCompleted)
	assert.Equal(t, 100, last.Progress.Progress)
	assert.Equal(t, constants.StatusCompleted, last.Progress.Status)
	require.NotNil(t, last.Progress.CompletedAt)
	assert.True(t, last.Progress.CompletedAt.Equal(testStart))
	assert.Equal(t, 550, last.TotalXP)
	assert.Equal(t, 1, last.Level)

	user, err := f.users.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 550, user.Learning.TotalXP)
	assert.Equal(t, []uuid.UUID{f.course.ID}, []uuid.UUID(user.Learning.CompletedCourses))

	course, err := f.courses.GetByID(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.Stats.Completed)

	// revisiting a finished course changes nothing
	after, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, lessons[3]))
	require.NoError(t, err)
	assert.False(t, after.CourseCompleted)
	assert.Zero(t, after.XPAwarded)
}

func TestLearningService_LevelUp(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", f.student.ID).UpdateColumn("total_xp", 950).Error)
	_, err := f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	resp, err := f.svc.UpdateProgress(ctx, f.student, completed(f.course.ID, f.lessonIDs()[0]))
	require.NoError(t, err)
	assert.Equal(t, 1050, resp.TotalXP)
	assert.Equal(t, 2, resp.Level)
}

func TestLearningService_ParallelCompletionsKeepAllXP(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	lessons := f.lessonIDs()

	_, err := f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	// each request authenticates separately and holds its own copy of the user
	first, err := f.users.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	second, err := f.users.GetByID(ctx, f.student.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateProgress(ctx, first, completed(f.course.ID, lessons[0]))
	require.NoError(t, err)
	resp, err := f.svc.UpdateProgress(ctx, second, completed(f.course.ID, lessons[1]))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLessonXP+250, resp.TotalXP)

	stored, err := f.users.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLessonXP+250, stored.Learning.TotalXP)
}

func TestLearningService_ListProgress(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	other := testutil.CreateCourse(t, f.db, f.course.InstructorID, "Advanced Prompts", true)

	_, err := f.svc.Enroll(ctx, f.student, f.course.ID)
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, f.student, other.ID)
	require.NoError(t, err)

	all, err := f.svc.ListProgress(ctx, f.student, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := f.svc.ListProgress(ctx, f.student, &other.ID)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, other.ID, one[0].CourseID)
	require.NotNil(t, one[0].Course)
	assert.Equal(t, "Advanced Prompts", one[0].Course.Title)
}
