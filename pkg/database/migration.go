package database

import (
	"github.com/promptmaster/api/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Progress{},
		&model.Assessment{},
		&model.AssessmentAttempt{},
	); err != nil {
		return err
	}

	return CreateIndexes(db)
}
