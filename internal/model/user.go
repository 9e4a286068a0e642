package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HasherSettingKey is the gorm statement setting that carries the
// PasswordHasher used by the BeforeSave hook.
const HasherSettingKey = "promptmaster:password_hasher"

var ErrNoPasswordHasher = errors.New("model: password changed but no hasher configured on the statement")

// PasswordHasher turns a plaintext credential into a stored digest.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type User struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string      `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Name         string      `gorm:"column:name;size:100;not null" json:"name"`
	Password     string      `gorm:"column:password;not null" json:"-"`
	Role         string      `gorm:"column:role;size:20;index;not null" json:"role"`
	Subscription string      `gorm:"column:subscription;size:20;not null" json:"subscription"`
	Profile      Profile     `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Preferences  Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Learning     Learning    `gorm:"embedded" json:"learning"`
	Security     Security    `gorm:"embedded" json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	passwordChanged bool
}

type Profile struct {
	Avatar     string `gorm:"column:avatar" json:"avatar,omitempty"`
	Bio        string `gorm:"column:bio;size:500" json:"bio,omitempty"`
	Location   string `gorm:"column:location" json:"location,omitempty"`
	Website    string `gorm:"column:website" json:"website,omitempty"`
	SkillLevel string `gorm:"column:skill_level;size:20" json:"skillLevel"`
}

type Preferences struct {
	EmailNotifications bool   `gorm:"column:email_notifications" json:"emailNotifications"`
	PushNotifications  bool   `gorm:"column:push_notifications" json:"pushNotifications"`
	Theme              string `gorm:"column:theme;size:10" json:"theme"`
	Language           string `gorm:"column:language;size:10" json:"language"`
}

type Learning struct {
	TotalXP          int                            `gorm:"column:total_xp;index;not null;default:0" json:"totalXp"`
	Level            int                            `gorm:"column:level;not null;default:1" json:"level"`
	Streak           int                            `gorm:"column:streak;not null;default:0" json:"streak"`
	Achievements     datatypes.JSONSlice[string]    `gorm:"column:achievements" json:"achievements"`
	EnrolledCourses  datatypes.JSONSlice[uuid.UUID] `gorm:"column:enrolled_courses" json:"enrolledCourses"`
	CompletedCourses datatypes.JSONSlice[uuid.UUID] `gorm:"column:completed_courses" json:"completedCourses"`
}

// PasswordReset is a pending reset request. It is stored as one value so
// the token and its expiry are always set and cleared together.
type PasswordReset struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Security struct {
	EmailVerified          bool           `gorm:"column:email_verified;not null;default:false"`
	EmailVerificationToken *string        `gorm:"column:email_verification_token"`
	PasswordReset          *PasswordReset `gorm:"column:password_reset;type:text;serializer:json"`
	ResetLookup            *string        `gorm:"column:password_reset_token;index"` // mirrors PasswordReset.Token, set by BeforeSave
	LastLogin              *time.Time     `gorm:"column:last_login"`
	LoginAttempts          int            `gorm:"column:login_attempts;not null;default:0"`
	LockUntil              *time.Time     `gorm:"column:lock_until"`
}

// NewUser builds a user with the default role, tier and preferences.
// The plaintext password is hashed when the user is first saved.
func NewUser(email, name, password, role string) *User {
	if role == "" {
		role = constants.RoleStudent
	}

	u := &User{
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Subscription: constants.TierFree,
		Profile:      Profile{SkillLevel: constants.SkillBeginner},
		Preferences: Preferences{
			EmailNotifications: true,
			PushNotifications:  true,
			Theme:              constants.ThemeLight,
			Language:           "en",
		},
		Learning: Learning{Level: 1},
	}
	u.SetPassword(password)
	return u
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave normalizes the email, keeps the reset lookup column in sync and
// hashes a credential set through SetPassword exactly once.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)

	if u.Security.PasswordReset != nil {
		token := u.Security.PasswordReset.Token
		u.Security.ResetLookup = &token
	} else {
		u.Security.ResetLookup = nil
	}

	if !u.passwordChanged {
		return nil
	}

	value, ok := tx.Get(HasherSettingKey)
	if !ok {
		return ErrNoPasswordHasher
	}
	hasher, ok := value.(PasswordHasher)
	if !ok {
		return ErrNoPasswordHasher
	}

	return u.HashPassword(hasher)
}

// SetPassword replaces the credential with a plaintext value that still needs hashing.
func (u *User) SetPassword(plain string) {
	u.Password = plain
	u.passwordChanged = true
}

// SetPasswordHash stores a digest produced elsewhere, for seeding and imports.
// The value is saved as given.
func (u *User) SetPasswordHash(digest string) {
	u.Password = digest
	u.passwordChanged = false
}

// PasswordChanged reports whether the credential holds an unhashed value.
func (u *User) PasswordChanged() bool {
	return u.passwordChanged
}

// HashPassword hashes a credential set through SetPassword. Whatever the
// value looks like, it is treated as plaintext.
func (u *User) HashPassword(hasher PasswordHasher) error {
	if !u.passwordChanged {
		return nil
	}

	digest, err := hasher.Hash(u.Password)
	if err != nil {
		return err
	}
	u.Password = digest
	u.passwordChanged = false
	return nil
}

// IsLocked reports whether the lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.Security.LockUntil != nil && u.Security.LockUntil.After(now)
}

// RegisterFailedLogin records a failed password check and returns true when
// the account became locked by this failure. A lock that already expired
// starts a fresh count.
func (u *User) RegisterFailedLogin(now time.Time, maxAttempts int, lockFor time.Duration) bool {
	if u.Security.LockUntil != nil && !u.Security.LockUntil.After(now) {
		u.Security.LoginAttempts = 0
		u.Security.LockUntil = nil
	}

	u.Security.LoginAttempts++
	if u.Security.LoginAttempts >= maxAttempts {
		until := now.Add(lockFor)
		u.Security.LockUntil = &until
		return true
	}
	return false
}

// RegisterSuccessfulLogin clears the lockout state and stamps the login time.
func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.ClearLockout()
	u.Security.LastLogin = &now
}

func (u *User) ClearLockout() {
	u.Security.LoginAttempts = 0
	u.Security.LockUntil = nil
}

func (u *User) SetPasswordReset(token string, expiresAt time.Time) {
	u.Security.PasswordReset = &PasswordReset{Token: token, ExpiresAt: expiresAt}
}

// ActivePasswordReset returns the pending reset unless it has expired.
func (u *User) ActivePasswordReset(now time.Time) (*PasswordReset, bool) {
	reset := u.Security.PasswordReset
	if reset == nil || !reset.ExpiresAt.After(now) {
		return nil, false
	}
	return reset, true
}

func (u *User) ClearPasswordReset() {
	u.Security.PasswordReset = nil
}

// SyncLevel derives the level from the current total experience.
func (u *User) SyncLevel() {
	u.Learning.Level = LevelForXP(u.Learning.TotalXP)
}

// LevelForXP derives the level from total experience, starting at 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/constants.XPPerLevel
}

func (u *User) IsEnrolled(courseID uuid.UUID) bool {
	for _, id := range u.Learning.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

func (u *User) AddEnrolledCourse(courseID uuid.UUID) {
	if !u.IsEnrolled(courseID) {
		u.Learning.EnrolledCourses = append(u.Learning.EnrolledCourses, courseID)
	}
}

func (u *User) AddCompletedCourse(courseID uuid.UUID) {
	for _, id := range u.Learning.CompletedCourses {
		if id == courseID {
			return
		}
	}
	u.Learning.CompletedCourses = append(u.Learning.CompletedCourses, courseID)
}

func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
