package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"gorm.io/gorm"
)

// ProfileInput is used both for creating a profile and, with nil fields
// skipped, for editing one.
type ProfileInput struct {
	Username     *string   `json:"username"`
	Email        *string   `json:"email"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	ProfileImage *string   `json:"profileImage"`
	Bio          *string   `json:"bio"`
	Interests    *[]string `json:"interests"`
	Location     *string   `json:"location"`
}

type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService { return &UserService{users: users} }

// Create stores the profile of a user registered by the auth service.
func (s *UserService) Create(ctx context.Context, in ProfileInput) (*models.User, error) {
	if in.Username == nil || in.Email == nil {
		return nil, Invalid("username and email are required")
	}
	u := &models.User{}
	if err := s.apply(ctx, u, in); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storageErr("create user", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("find user", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("find user", err)
	}
	if err := s.apply(ctx, u, in); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, storageErr("save user", err)
	}
	return u, nil
}

func (s *UserService) apply(ctx context.Context, u *models.User, in ProfileInput) error {
	if in.Username != nil && *in.Username != u.Username {
		username := strings.TrimSpace(*in.Username)
		if err := utils.ValidateUsername(username); err != nil {
			return Invalid("%s", err.Error())
		}
		existing, err := s.users.FindByUsername(ctx, username)
		if err == nil && existing.ID != u.ID {
			return Invalid("username %q is taken", username)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr("find user", err)
		}
		u.Username = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := utils.ValidateEmail(email); err != nil {
			return Invalid("%s", err.Error())
		}
		u.Email = email
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.ProfileImage != nil {
		u.ProfileImage = *in.ProfileImage
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Interests != nil {
		u.Interests = *in.Interests
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	return nil
}
