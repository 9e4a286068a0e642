package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db     *gorm.DB
	hasher model.PasswordHasher
}

// NewUserRepository wires the hasher into every write so the model's
// BeforeSave hook can hash credentials set through User.SetPassword.
func NewUserRepository(db *gorm.DB, hasher model.PasswordHasher) *UserRepository {
	return &UserRepository{db: db, hasher: hasher}
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

func (r *UserRepository) writer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Set(model.HasherSettingKey, r.hasher).Omit(clause.Associations)
}

// Create inserts a new user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, err := begin(ctx, "Create")
	if err != nil {
		return err
	}

	logger.DebugWithContext(ctx, "Creating new user").
		String("email", user.Email).
		String("role", user.Role).
		Log()

	start := time.Now()
	err = translate(r.writer(ctx).Create(user).Error)
	finish(ctx, "Create user", start, err)

	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, err := begin(ctx, "GetByID")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User
	err = r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	finish(ctx, "Get user by ID", start, err)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail finds a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, err := begin(ctx, "GetByEmail")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User
	err = r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error
	finish(ctx, "Get user by email", start, err)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByResetToken finds the user holding a password reset token. Expiry is
// checked by the caller through User.ActivePasswordReset.
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	ctx, err := begin(ctx, "GetByResetToken")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var user model.User
	err = r.db.WithContext(ctx).Where("password_reset_token = ?", token).First(&user).Error
	finish(ctx, "Get user by reset token", start, err)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Save writes every column of the user
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	ctx, err := begin(ctx, "Save")
	if err != nil {
		return err
	}

	start := time.Now()
	err = translate(r.writer(ctx).Save(user).Error)
	finish(ctx, "Save user", start, err)

	return err
}

// UpdateLoginState persists only the lockout counters and last login time
func (r *UserRepository) UpdateLoginState(ctx context.Context, user *model.User) error {
	ctx, err := begin(ctx, "UpdateLoginState")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.writer(ctx).Model(user).
		Select("login_attempts", "lock_until", "last_login").
		Updates(user).Error
	finish(ctx, "Update login state", start, err)

	if err == nil {
		logger.DebugWithContext(ctx, "Login state updated").
			String("user_id", user.ID.String()).
			Int("login_attempts", user.Security.LoginAttempts).
			Bool("locked", user.Security.LockUntil != nil).
			Log()
	}

	return err
}

// UpdateProfile persists the user-editable profile columns
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	ctx, err := begin(ctx, "UpdateProfile")
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.writer(ctx).Model(user).
		Select(
			"name",
			"profile_avatar", "profile_bio", "profile_location", "profile_website", "profile_skill_level",
			"pref_email_notifications", "pref_push_notifications", "pref_theme", "pref_language",
		).
		Updates(user).Error
	finish(ctx, "Update profile", start, err)

	return err
}

// List returns one page of users and the total matching count
func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	ctx, err := begin(ctx, "List")
	if err != nil {
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Listing users").
		String("search", filter.Search).
		String("role", filter.Role).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Log()

	start := time.Now()
	query := r.db.WithContext(ctx).Model(&model.User{})

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		finish(ctx, "Count users", start, err)
		return nil, 0, err
	}

	var users []model.User
	err = query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&users).Error
	finish(ctx, "List users", start, err)
	if err != nil {
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}
