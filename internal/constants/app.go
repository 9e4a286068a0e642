package constants

// Application Information
const (
	AppName    = "PromptMaster API"
	AppVersion = "1.0.0"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix     = "pm:"
	CacheKeyCourse     = CacheKeyPrefix + "course:"
	CacheKeyCourseList = CacheKeyPrefix + "courses:"
)

// Roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Subscription tiers
const (
	TierFree       = "free"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// Progress statuses
const (
	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Course difficulties
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Question types
const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionMultipleSelect = "multiple-select"
	QuestionTrueFalse      = "true-false"
	QuestionShortAnswer    = "short-answer"
	QuestionScenario       = "scenario"
	QuestionCode           = "code"
)

// Learning
const (
	DefaultLessonXP       = 100
	XPPerLevel            = 1000
	DefaultPassingScore   = 70
	DefaultMaxAttempts    = 3
	DefaultAssessmentTime = 30
)

// Skill levels
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
	SkillExpert       = "expert"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)
