package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type profileStore interface {
	UpdateProfile(ctx context.Context, user *model.User) error
	List(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error)
}

type enrollmentLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) ([]model.Progress, error)
}

type UserService struct {
	users    profileStore
	progress enrollmentLister
}

func NewUserService(users profileStore, progress enrollmentLister) *UserService {
	return &UserService{users: users, progress: progress}
}

func (s *UserService) Profile(user *model.User) dto.UserResponse {
	return dto.NewUserResponse(user)
}

// UpdateProfile changes only the name, profile and preference fields.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateProfile")

	if name := sanitizePtr(req.Name); name != nil && *name != "" {
		user.Name = *name
	}

	if p := req.Profile; p != nil {
		if p.Avatar != nil {
			user.Profile.Avatar = *sanitizePtr(p.Avatar)
		}
		if p.Bio != nil {
			user.Profile.Bio = *sanitizePtr(p.Bio)
		}
		if p.Location != nil {
			user.Profile.Location = *sanitizePtr(p.Location)
		}
		if p.Website != nil {
			user.Profile.Website = *sanitizePtr(p.Website)
		}
		if p.SkillLevel != nil {
			user.Profile.SkillLevel = *p.SkillLevel
		}
	}

	if p := req.Preferences; p != nil {
		if p.EmailNotifications != nil {
			user.Preferences.EmailNotifications = *p.EmailNotifications
		}
		if p.PushNotifications != nil {
			user.Preferences.PushNotifications = *p.PushNotifications
		}
		if p.Theme != nil {
			user.Preferences.Theme = *p.Theme
		}
		if p.Language != nil {
			user.Preferences.Language = *sanitizePtr(p.Language)
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("user_id", user.ID.String()).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Profile updated successfully").
		String("user_id", user.ID.String()).
		Log()

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Courses lists the user's enrolled courses with their progress.
func (s *UserService) Courses(ctx context.Context, user *model.User) ([]dto.UserCourseResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UserCourses")

	records, err := s.progress.ListByUser(ctx, user.ID, nil)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.UserCourseResponse, 0, len(records))
	for i := range records {
		record := &records[i]
		if record.Course == nil {
			continue
		}
		course := dto.NewCourseResponse(record.Course)
		record.Course = nil
		out = append(out, dto.UserCourseResponse{
			Course:   course,
			Progress: dto.NewProgressResponse(record),
		})
	}
	return out, nil
}

// List is the admin user listing.
func (s *UserService) List(ctx context.Context, query dto.UserListQuery, page constants.PaginationParams) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "ListUsers")

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search: query.Search,
		Role:   query.Role,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out, total, nil
}
