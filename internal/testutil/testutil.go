// Package testutil builds throwaway dependencies for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/password"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with every model migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Progress{},
		&model.Assessment{},
		&model.AssessmentAttempt{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// NewHasher returns a bcrypt hasher at minimum cost so tests stay fast.
func NewHasher(t *testing.T) *password.Hasher {
	t.Helper()

	h, err := password.NewHasher(password.AlgorithmBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	return h
}

// CreateUser persists a user with the given role and plaintext password.
func CreateUser(t *testing.T, db *gorm.DB, hasher model.PasswordHasher, email, password, role string) *model.User {
	t.Helper()

	user := model.NewUser(email, "Test User", password, role)
	if err := db.Set(model.HasherSettingKey, hasher).Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateCourse persists a course with two modules of two lessons each.
func CreateCourse(t *testing.T, db *gorm.DB, instructorID uuid.UUID, title string, published bool) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:        title,
		Slug:         strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Description:  title + " description",
		Difficulty:   constants.DifficultyBeginner,
		Category:     "Prompting",
		Tags:         []string{"prompting", "basics"},
		InstructorID: instructorID,
		IsPublished:  published,
		Modules: []model.Module{
			{Title: "One", Order: 1, Lessons: []model.Lesson{
				{Title: "1.1", Order: 1},
				{Title: "1.2", Order: 2, XPReward: 250},
			}},
			{Title: "Two", Order: 2, Lessons: []model.Lesson{
				{Title: "2.1", Order: 1},
				{Title: "2.2", Order: 2},
			}},
		},
	}
	if err := db.Omit("Instructor").Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

// Clock is a settable time source for lockout and expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
