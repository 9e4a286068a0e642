package database

import (
	"github.com/promptmaster/api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateIndexes adds PostgreSQL-specific indexes that gorm tags cannot
// express. Other dialects are skipped.
func CreateIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []string{
		// catalog listing: published courses, newest first
		"CREATE INDEX IF NOT EXISTS idx_courses_published_created ON courses(is_published, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_courses_published_enrolled ON courses(is_published, stats_enrolled DESC);",
		"CREATE INDEX IF NOT EXISTS idx_courses_published_rating ON courses(is_published, stats_rating DESC);",
		"CREATE INDEX IF NOT EXISTS idx_courses_tags_gin ON courses USING GIN (tags);",
		"CREATE INDEX IF NOT EXISTS idx_courses_title_fts ON courses USING GIN (to_tsvector('english', title || ' ' || description));",

		// leaderboards and admin listing
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_progress_last_accessed ON progress(user_id, last_accessed_at DESC);",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			// a missing index slows queries down but must not block startup
			logger.GetLogger().Warn("Failed to create index", zap.String("sql", indexSQL), zap.Error(err))
		}
	}

	return nil
}
