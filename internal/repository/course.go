package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// CourseFilter describes a catalog query. Only published courses are listed.
type CourseFilter struct {
	Difficulty   string
	Category     string
	Tags         []string
	Search       string
	InstructorID *uuid.UUID
	SortBy       string
	Limit        int
	Offset       int
}

// instructor columns exposed alongside a course
func selectInstructor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role", "profile_avatar", "profile_bio")
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	ctx, err := begin(ctx, "CreateCourse")
	if err != nil {
		return err
	}

	start := time.Now()
	err = translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error)
	finish(ctx, "Create course", start, err)

	if err == nil {
		logger.InfoWithContext(ctx, "Course created").
			String("course_id", course.ID.String()).
			String("slug", course.Slug).
			Log()
	}

	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	ctx, err := begin(ctx, "GetCourseByID")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var course model.Course
	err = r.db.WithContext(ctx).
		Preload("Instructor", selectInstructor).
		Where("id = ?", id).
		First(&course).Error
	finish(ctx, "Get course by ID", start, err)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *CourseRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, err := begin(ctx, "SlugExists")
	if err != nil {
		return false, err
	}

	start := time.Now()
	var count int64
	err = r.db.WithContext(ctx).Model(&model.Course{}).Where("slug = ?", slug).Count(&count).Error
	finish(ctx, "Check course slug", start, err)

	return count > 0, err
}

// Save writes every column of the course without touching the instructor row
func (r *CourseRepository) Save(ctx context.Context, course *model.Course) error {
	ctx, err := begin(ctx, "SaveCourse")
	if err != nil {
		return err
	}

	start := time.Now()
	err = translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error)
	finish(ctx, "Save course", start, err)

	return err
}

// List returns one page of published courses and the total matching count
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]model.Course, int64, error) {
	ctx, err := begin(ctx, "ListCourses")
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	query := r.db.WithContext(ctx).Model(&model.Course{}).Where("is_published = ?", true)

	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}
	if len(filter.Tags) > 0 {
		// any of the requested tags
		tagQuery := r.db.Where("1 = 0")
		for _, tag := range filter.Tags {
			tagQuery = tagQuery.Or("LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\\'", likePattern(`"`+tag+`"`))
		}
		query = query.Where(tagQuery)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		finish(ctx, "Count courses", start, err)
		return nil, 0, err
	}

	var courses []model.Course
	err = query.
		Preload("Instructor", selectInstructor).
		Order(courseOrder(filter.SortBy)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&courses).Error
	finish(ctx, "List courses", start, err)
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func courseOrder(sortBy string) string {
	switch sortBy {
	case constants.SortPopular:
		return "stats_enrolled DESC, created_at DESC"
	case constants.SortRating:
		return "stats_rating DESC, created_at DESC"
	case constants.SortTitle:
		return "title ASC"
	default:
		return "created_at DESC"
	}
}

// ListByIDs loads the given courses, in no particular order
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Course, error) {
	ctx, err := begin(ctx, "ListCoursesByIDs")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Course{}, nil
	}

	start := time.Now()
	var courses []model.Course
	err = r.db.WithContext(ctx).
		Preload("Instructor", selectInstructor).
		Where("id IN ?", ids).
		Find(&courses).Error
	finish(ctx, "List courses by IDs", start, err)

	return courses, err
}
