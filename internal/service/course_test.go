package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/promptmaster/api/pkg/circuit"
	"github.com/promptmaster/api/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type courseFixture struct {
	db         *gorm.DB
	mr         *miniredis.Miniredis
	svc        *CourseService
	instructor *model.User
	other      *model.User
	admin      *model.User
	student    *model.User
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)
	mr := miniredis.RunT(t)

	client := redis.New(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	breaker := circuit.NewBreaker("redis", circuit.DefaultConfig(), zap.NewNop())
	cache := NewCourseCache(client, breaker, 5*time.Minute)

	return &courseFixture{
		db:         db,
		mr:         mr,
		svc:        NewCourseService(repository.NewCourseRepository(db), repository.NewProgressRepository(db), cache),
		instructor: testutil.CreateUser(t, db, hasher, "inst@example.com", "P@ssw0rd1", constants.RoleInstructor),
		other:      testutil.CreateUser(t, db, hasher, "other@example.com", "P@ssw0rd1", constants.RoleInstructor),
		admin:      testutil.CreateUser(t, db, hasher, "admin@example.com", "P@ssw0rd1", constants.RoleAdmin),
		student:    testutil.CreateUser(t, db, hasher, "student@example.com", "P@ssw0rd1", constants.RoleStudent),
	}
}

func newCourseRequest(title string) dto.CreateCourseRequest {
	return dto.CreateCourseRequest{
		Title:       title,
		Description: "Learn to write <script>alert('x')</script>good prompts",
		Difficulty:  constants.DifficultyBeginner,
		Category:    "Prompting",
		Tags:        []string{"Prompting", " GPT ", "prompting"},
		IsPublished: true,
		Modules: []dto.ModuleRequest{
			{Title: "Intro", Lessons: []dto.LessonRequest{{Title: "Hello"}}},
		},
	}
}

func TestCourseService_CreateUniqueSlug(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, newCourseRequest("Prompt Engineering 101!"), f.instructor)
	require.NoError(t, err)
	assert.Equal(t, "prompt-engineering-101", first.Slug)
	assert.Equal(t, f.instructor.ID, first.InstructorID)
	assert.Equal(t, "Learn to write good prompts", first.Description)
	assert.Equal(t, []string{"prompting", "gpt"}, first.Tags)
	require.Len(t, first.Modules, 1)
	require.Len(t, first.Modules[0].Lessons, 1)
	assert.NotEmpty(t, first.Modules[0].Lessons[0].ID)
	assert.Equal(t, constants.DefaultLessonXP, first.Modules[0].Lessons[0].XPReward)

	second, err := f.svc.Create(ctx, newCourseRequest("Prompt Engineering 101"), f.other)
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "prompt-engineering-101-"))
	assert.Len(t, second.Slug, len("prompt-engineering-101-")+6)
}

func TestCourseService_UpdateOwnership(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newCourseRequest("Owned Course"), f.instructor)
	require.NoError(t, err)

	title := "Renamed Course"
	_, err = f.svc.Update(ctx, created.ID, dto.UpdateCourseRequest{Title: &title}, f.other)
	require.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.Equal(t, "course not found or unauthorized", apperrors.GetDomainError(err).Message)

	updated, err := f.svc.Update(ctx, created.ID, dto.UpdateCourseRequest{Title: &title}, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Course", updated.Title)
	assert.Equal(t, created.Slug, updated.Slug, "slug survives a rename")

	draft := false
	byAdmin, err := f.svc.Update(ctx, created.ID, dto.UpdateCourseRequest{IsPublished: &draft}, f.admin)
	require.NoError(t, err)
	assert.False(t, byAdmin.IsPublished)
	assert.Equal(t, "Renamed Course", byAdmin.Title)
}

func TestCourseService_DraftVisibility(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()
	draft := testutil.CreateCourse(t, f.db, f.instructor.ID, "Draft Course", false)

	_, err := f.svc.Get(ctx, draft.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	_, err = f.svc.Get(ctx, draft.ID, f.student)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	got, err := f.svc.Get(ctx, draft.ID, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = f.svc.Get(ctx, draft.ID, f.admin)
	assert.NoError(t, err)
}

func TestCourseService_GetIncludesViewerProgress(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()
	course := testutil.CreateCourse(t, f.db, f.instructor.ID, "Public Course", true)

	anon, err := f.svc.Get(ctx, course.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, anon.UserProgress)
	require.NotNil(t, anon.Instructor)
	assert.Equal(t, "Test User", anon.Instructor.Name)

	require.NoError(t, repository.NewProgressRepository(f.db).Enroll(ctx, f.student, &model.Progress{
		UserID:   f.student.ID,
		CourseID: course.ID,
		Status:   constants.StatusInProgress,
	}))

	mine, err := f.svc.Get(ctx, course.ID, f.student)
	require.NoError(t, err)
	require.NotNil(t, mine.UserProgress)
	assert.Equal(t, constants.StatusInProgress, mine.UserProgress.Status)
}

func TestCourseService_ListUsesCache(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()
	page := constants.NewPaginationParams(1, 12)

	testutil.CreateCourse(t, f.db, f.instructor.ID, "Alpha Course", true)
	testutil.CreateCourse(t, f.db, f.instructor.ID, "Hidden Course", false)

	courses, total, err := f.svc.List(ctx, dto.CourseListQuery{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "Alpha Course", courses[0].Title)

	keys := f.mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], constants.CacheKeyCourseList))

	// written behind the service's back, so the cached page is still served
	testutil.CreateCourse(t, f.db, f.instructor.ID, "Beta Course", true)
	_, total, err = f.svc.List(ctx, dto.CourseListQuery{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// a write through the service drops cached pages
	_, err = f.svc.Create(ctx, newCourseRequest("Gamma Course"), f.instructor)
	require.NoError(t, err)
	_, total, err = f.svc.List(ctx, dto.CourseListQuery{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestCourseService_ListFallsBackWhenRedisIsDown(t *testing.T) {
	f := newCourseFixture(t)
	ctx := context.Background()
	testutil.CreateCourse(t, f.db, f.instructor.ID, "Sturdy Course", true)

	f.mr.Close()

	courses, total, err := f.svc.List(ctx, dto.CourseListQuery{Search: "sturdy"}, constants.NewPaginationParams(1, 12))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, courses, 1)
}

func TestCourseService_WithoutCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)
	instructor := testutil.CreateUser(t, db, hasher, "solo@example.com", "P@ssw0rd1", constants.RoleInstructor)
	svc := NewCourseService(repository.NewCourseRepository(db), repository.NewProgressRepository(db), NewCourseCache(nil, nil, time.Minute))

	created, err := svc.Create(context.Background(), newCourseRequest("No Cache Course"), instructor)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, got.Slug)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("  Hello, World!  "))
	assert.Equal(t, "course", slugify("!!!"))
	assert.Equal(t, "c-prompts-101", slugify("C++ Prompts 101"))
}
