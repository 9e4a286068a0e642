package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/model"
)

// UserResponse is the public view of a user. Credentials and security
// tokens never appear here.
type UserResponse struct {
	ID            uuid.UUID         `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Role          string            `json:"role"`
	Subscription  string            `json:"subscription"`
	Profile       model.Profile     `json:"profile"`
	Preferences   model.Preferences `json:"preferences"`
	Learning      LearningResponse  `json:"learning"`
	EmailVerified bool              `json:"emailVerified"`
	LastLogin     *time.Time        `json:"lastLogin,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type LearningResponse struct {
	TotalXP          int         `json:"totalXp"`
	Level            int         `json:"level"`
	Streak           int         `json:"streak"`
	Achievements     []string    `json:"achievements"`
	EnrolledCourses  []uuid.UUID `json:"enrolledCourses"`
	CompletedCourses []uuid.UUID `json:"completedCourses"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Subscription: u.Subscription,
		Profile:      u.Profile,
		Preferences:  u.Preferences,
		Learning: LearningResponse{
			TotalXP:          u.Learning.TotalXP,
			Level:            u.Learning.Level,
			Streak:           u.Learning.Streak,
			Achievements:     nonNil(u.Learning.Achievements),
			EnrolledCourses:  nonNil(u.Learning.EnrolledCourses),
			CompletedCourses: nonNil(u.Learning.CompletedCourses),
		},
		EmailVerified: u.Security.EmailVerified,
		LastLogin:     u.Security.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserSummary is the embedded view of another user, e.g. a course instructor.
type UserSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
	Bio    string    `json:"bio,omitempty"`
}

func NewUserSummary(u *model.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Profile.Avatar, Bio: u.Profile.Bio}
}

// UpdateProfileRequest lists the only fields a user may change on themselves.
type UpdateProfileRequest struct {
	Name        *string                   `json:"name" binding:"omitempty,min=2,max=100,nohtml"`
	Profile     *UpdateProfileFields      `json:"profile"`
	Preferences *UpdatePreferencesRequest `json:"preferences"`
}

type UpdateProfileFields struct {
	Avatar     *string `json:"avatar" binding:"omitempty,url,max=2048"`
	Bio        *string `json:"bio" binding:"omitempty,max=500"`
	Location   *string `json:"location" binding:"omitempty,max=100,nohtml"`
	Website    *string `json:"website" binding:"omitempty,url,max=2048"`
	SkillLevel *string `json:"skillLevel" binding:"omitempty,skilllevel"`
}

type UpdatePreferencesRequest struct {
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	Theme              *string `json:"theme" binding:"omitempty,theme"`
	Language           *string `json:"language" binding:"omitempty,min=2,max=10"`
}

// UserListQuery is the admin user listing filter.
type UserListQuery struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	Role   string `form:"role" binding:"omitempty,oneof=student instructor admin"`
}

// UserCourseResponse pairs an enrolled course with the user's progress in it.
type UserCourseResponse struct {
	Course   CourseResponse    `json:"course"`
	Progress *ProgressResponse `json:"progress,omitempty"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
