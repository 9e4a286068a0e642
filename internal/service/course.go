package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

const maxSlugAttempts = 5

type courseStore interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, course *model.Course) error
	List(ctx context.Context, filter repository.CourseFilter) ([]model.Course, int64, error)
}

type progressFinder interface {
	Get(ctx context.Context, userID, courseID uuid.UUID) (*model.Progress, error)
}

type CourseService struct {
	courses  courseStore
	progress progressFinder
	cache    *CourseCache
}

func NewCourseService(courses courseStore, progress progressFinder, cache *CourseCache) *CourseService {
	return &CourseService{courses: courses, progress: progress, cache: cache}
}

// List returns one catalog page of published courses.
func (s *CourseService) List(ctx context.Context, query dto.CourseListQuery, page constants.PaginationParams) ([]dto.CourseResponse, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "ListCourses")

	params := map[string]string{
		"difficulty": query.Difficulty,
		"category":   query.Category,
		"tags":       query.Tags,
		"search":     strings.TrimSpace(query.Search),
		"sortBy":     query.SortBy,
		"page":       strconv.Itoa(page.Page),
		"limit":      strconv.Itoa(page.Limit),
	}
	if courses, total, ok := s.cache.GetList(ctx, params); ok {
		logger.DebugWithContext(ctx, "Course list served from cache").
			Int64("total", total).
			Log()
		return courses, total, nil
	}

	courses, total, err := s.courses.List(ctx, repository.CourseFilter{
		Difficulty: query.Difficulty,
		Category:   query.Category,
		Tags:       splitTags(query.Tags),
		Search:     params["search"],
		SortBy:     query.SortBy,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		responses = append(responses, dto.NewCourseResponse(&courses[i]))
	}
	s.cache.SetList(ctx, params, responses, total)

	logger.InfoWithContext(ctx, "Courses retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(responses)).
		Int("page", page.Page).
		Log()

	return responses, total, nil
}

// Get returns a course with the viewer's progress. Unpublished courses are
// visible only to their instructor and admins.
func (s *CourseService) Get(ctx context.Context, id uuid.UUID, viewer *model.User) (*dto.CourseDetailResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "GetCourse")

	course, ok := s.cache.GetCourse(ctx, id)
	if !ok {
		stored, err := s.courses.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.ErrCourseNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		resp := dto.NewCourseResponse(stored)
		course = &resp
		if course.IsPublished {
			s.cache.SetCourse(ctx, resp)
		}
	}

	if !course.IsPublished && !canManage(viewer, course.InstructorID) {
		return nil, apperrors.ErrCourseNotFound
	}

	detail := &dto.CourseDetailResponse{CourseResponse: *course}
	if viewer != nil {
		progress, err := s.progress.Get(ctx, viewer.ID, id)
		switch {
		case err == nil:
			detail.UserProgress = dto.NewProgressResponse(progress)
		case !repository.IsNotFound(err):
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return detail, nil
}

// Create stores a new course owned by instructor under a unique slug.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest, instructor *model.User) (*dto.CourseResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "CreateCourse")

	course := &model.Course{
		Title:              sanitizeText(req.Title),
		Description:        sanitizeText(req.Description),
		ShortDescription:   sanitizeText(req.ShortDescription),
		Difficulty:         req.Difficulty,
		Category:           sanitizeText(req.Category),
		Tags:               normalizeTags(req.Tags),
		Thumbnail:          strings.TrimSpace(req.Thumbnail),
		EstimatedHours:     req.EstimatedHours,
		Price:              req.Price,
		Prerequisites:      sanitizeList(req.Prerequisites),
		LearningObjectives: sanitizeList(req.LearningObjectives),
		Modules:            sanitizeModules(dto.ToModules(req.Modules)),
		IsPublished:        req.IsPublished,
		InstructorID:       instructor.ID,
	}
	if course.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "title is required")
	}

	base := slugify(course.Title)
	for attempt := 0; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, base)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		course.Slug = slug

		err = s.courses.Create(ctx, course)
		if err == nil {
			break
		}
		// a concurrent create can take the slug between the check and the insert
		if !errors.Is(err, repository.ErrDuplicate) || attempt+1 >= maxSlugAttempts {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		course.ID = uuid.Nil
	}

	course.Instructor = instructor
	if course.IsPublished {
		s.cache.Invalidate(ctx, course.ID)
	}

	logger.InfoWithContext(ctx, "Course created successfully").
		String("course_id", course.ID.String()).
		String("slug", course.Slug).
		Log()

	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// Update applies the allowed fields. Only the owning instructor or an admin
// may update; anyone else gets the same error as for a missing course.
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCourseRequest, caller *model.User) (*dto.CourseResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateCourse")

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.WithMessage(apperrors.ErrCourseNotFound, "course not found or unauthorized")
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !canManage(caller, course.InstructorID) {
		logger.WarnWithContext(ctx, "Course update denied").
			String("course_id", id.String()).
			String("caller_id", caller.ID.String()).
			Log()
		return nil, apperrors.WithMessage(apperrors.ErrCourseNotFound, "course not found or unauthorized")
	}

	applyCourseUpdate(course, req)
	if err := s.courses.Save(ctx, course); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	s.cache.Invalidate(ctx, course.ID)

	logger.InfoWithContext(ctx, "Course updated successfully").
		String("course_id", course.ID.String()).
		Log()

	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

func applyCourseUpdate(course *model.Course, req dto.UpdateCourseRequest) {
	if v := sanitizePtr(req.Title); v != nil && *v != "" {
		course.Title = *v
	}
	if v := sanitizePtr(req.Description); v != nil {
		course.Description = *v
	}
	if v := sanitizePtr(req.ShortDescription); v != nil {
		course.ShortDescription = *v
	}
	if req.Difficulty != nil {
		course.Difficulty = *req.Difficulty
	}
	if v := sanitizePtr(req.Category); v != nil && *v != "" {
		course.Category = *v
	}
	if req.Tags != nil {
		course.Tags = normalizeTags(*req.Tags)
	}
	if req.Thumbnail != nil {
		course.Thumbnail = strings.TrimSpace(*req.Thumbnail)
	}
	if req.EstimatedHours != nil {
		course.EstimatedHours = *req.EstimatedHours
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Prerequisites != nil {
		course.Prerequisites = sanitizeList(*req.Prerequisites)
	}
	if req.LearningObjectives != nil {
		course.LearningObjectives = sanitizeList(*req.LearningObjectives)
	}
	if req.Modules != nil {
		course.Modules = sanitizeModules(dto.ToModules(*req.Modules))
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
}

func (s *CourseService) uniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for i := 0; i < maxSlugAttempts; i++ {
		exists, err := s.courses.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	}
	return slug, nil
}

func canManage(user *model.User, instructorID uuid.UUID) bool {
	if user == nil {
		return false
	}
	return user.HasRole(constants.RoleAdmin) || user.ID == instructorID
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > 200 {
		slug = strings.TrimRight(slug[:200], "-")
	}
	if slug == "" {
		return "course"
	}
	return slug
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeTags(strings.Split(raw, ","))
}

// normalizeTags lower-cases, trims and de-duplicates tags.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(sanitizeText(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func sanitizeModules(modules []model.Module) []model.Module {
	for i := range modules {
		modules[i].Title = sanitizeText(modules[i].Title)
		modules[i].Description = sanitizeText(modules[i].Description)
		for j := range modules[i].Lessons {
			lesson := &modules[i].Lessons[j]
			lesson.Title = sanitizeText(lesson.Title)
			lesson.Description = sanitizeText(lesson.Description)
			lesson.Content = sanitizeText(lesson.Content)
		}
	}
	return modules
}
