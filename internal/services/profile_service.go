package services

import (
	"context"
	"errors"

	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	UpdateDetails(ctx context.Context, profileID string, fullName *string, avatarURL *string) error
	UpdateRole(ctx context.Context, profileID string, role models.Role) error
}

type ProfileService struct {
	profiles ProfileRepository
}

func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (service *ProfileService) Get(ctx context.Context, viewer Viewer) (models.Profile, error) {
	profile, err := service.profiles.FindByID(ctx, viewer.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Profile{}, notFoundError("profile not found")
		}
		return models.Profile{}, err
	}
	return profile, nil
}

// UpdateOwn changes the viewer's name and avatar. The role is not editable here.
func (service *ProfileService) UpdateOwn(ctx context.Context, viewer Viewer, fullName *string, avatarURL *string) (models.Profile, error) {
	if fullName != nil {
		fullName = normalizeOptionalText(*fullName)
		if fullName == nil {
			return models.Profile{}, validationError("full_name cannot be blank")
		}
	}
	if avatarURL != nil {
		trimmed := normalizeOptionalText(*avatarURL)
		if trimmed == nil {
			empty := ""
			trimmed = &empty
		}
		avatarURL = trimmed
	}

	if err := service.profiles.UpdateDetails(ctx, viewer.AccountID, fullName, avatarURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Profile{}, notFoundError("profile not found")
		}
		return models.Profile{}, err
	}
	return service.Get(ctx, viewer)
}

func (service *ProfileService) List(ctx context.Context, viewer Viewer) ([]models.Profile, error) {
	if viewer.Role != models.RoleAdmin {
		return nil, forbiddenError("only admins can list users")
	}
	return service.profiles.List(ctx)
}

func (service *ProfileService) SetRole(ctx context.Context, viewer Viewer, profileID string, rawRole string) (models.Profile, error) {
	if viewer.Role != models.RoleAdmin {
		return models.Profile{}, forbiddenError("only admins can change roles")
	}
	return service.AssignRole(ctx, profileID, rawRole)
}

// AssignRole changes a profile's role without a caller check. The CLI uses it.
func (service *ProfileService) AssignRole(ctx context.Context, profileID string, rawRole string) (models.Profile, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return models.Profile{}, validationError("role must be admin, contractor or client")
	}
	if err := service.profiles.UpdateRole(ctx, profileID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Profile{}, notFoundError("profile not found")
		}
		return models.Profile{}, err
	}
	return service.Get(ctx, Viewer{AccountID: profileID})
}
