package db

import (
	"context"

	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByID(ctx context.Context, profileID string) (models.Profile, error) {
	var profile models.Profile
	if err := repo.database.WithContext(ctx).Where("id = ?", profileID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (repo *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0)
	if err := repo.database.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpdateDetails changes the self-editable columns. Role is never part of updates.
func (repo *ProfileRepository) UpdateDetails(ctx context.Context, profileID string, fullName *string, avatarURL *string) error {
	updates := map[string]any{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.updateByID(ctx, profileID, updates)
}

func (repo *ProfileRepository) UpdateRole(ctx context.Context, profileID string, role models.Role) error {
	return repo.updateByID(ctx, profileID, map[string]any{"role": role})
}

func (repo *ProfileRepository) updateByID(ctx context.Context, profileID string, updates map[string]any) error {
	result := repo.database.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
