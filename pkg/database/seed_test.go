package database

import (
	"testing"

	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/testutil"
)

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)
	cfg := &config.Config{Seed: config.SeedConfig{
		AdminEmail:    "Admin@PromptMaster.dev",
		AdminPassword: "ChangeMe123!",
		AdminName:     "Admin",
	}}

	if err := CreateIndexes(db); err != nil {
		t.Fatalf("indexes on sqlite should be skipped: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Seed(db, cfg, hasher); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var users []model.User
	if err := db.Find(&users).Error; err != nil {
		t.Fatalf("find users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(users))
	}
	admin := users[0]
	if admin.Email != "admin@promptmaster.dev" || admin.Role != "admin" {
		t.Errorf("unexpected admin %s/%s", admin.Email, admin.Role)
	}
	if !hasher.Verify("ChangeMe123!", admin.Password) {
		t.Error("admin password was not hashed with the configured hasher")
	}

	var courses []model.Course
	if err := db.Find(&courses).Error; err != nil {
		t.Fatalf("find courses: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}
	if courses[0].LessonCount() != 4 {
		t.Errorf("expected 4 lessons, got %d", courses[0].LessonCount())
	}
	for _, m := range courses[0].Modules {
		for _, l := range m.Lessons {
			if l.ID == "" || l.XPReward == 0 {
				t.Errorf("lesson %q not normalized: %+v", l.Title, l)
			}
		}
	}

	var quizzes int64
	db.Model(&model.Assessment{}).Count(&quizzes)
	if quizzes != 1 {
		t.Errorf("expected 1 assessment, got %d", quizzes)
	}
}

func TestSeedAdmin_StoresProvidedDigest(t *testing.T) {
	db := testutil.NewTestDB(t)
	hasher := testutil.NewHasher(t)

	digest, err := hasher.Hash("Precomputed123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	admin, err := SeedAdmin(db, config.SeedConfig{
		AdminEmail:        "root@promptmaster.dev",
		AdminPassword:     "ignored-when-digest-set",
		AdminPasswordHash: digest,
		AdminName:         "Root",
	}, hasher)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	var stored model.User
	if err := db.First(&stored, "id = ?", admin.ID).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if stored.Password != digest {
		t.Error("provided digest was not stored as given")
	}
	if !hasher.Verify("Precomputed123!", stored.Password) {
		t.Error("admin cannot log in with the password behind the digest")
	}
}
