package db

import (
	"context"

	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{database: database}
}

func (repo *ProjectRepository) withParticipants(ctx context.Context) *gorm.DB {
	return repo.database.WithContext(ctx).Preload("Client").Preload("Contractor")
}

func (repo *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	query := repo.withParticipants(ctx)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.ContractorID != "" {
		query = query.Where("contractor_id = ?", filter.ContractorID)
	}

	projects := make([]models.Project, 0)
	if err := query.Order("updated_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) FindByID(ctx context.Context, projectID string) (models.Project, error) {
	var project models.Project
	if err := repo.withParticipants(ctx).Where("id = ?", projectID).First(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return repo.database.WithContext(ctx).Omit("Client", "Contractor").Create(project).Error
}

func (repo *ProjectRepository) UpdateByID(ctx context.Context, projectID string, updates map[string]any) error {
	result := repo.database.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the project together with its updates and images.
func (repo *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectUpdate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", projectID).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (repo *ProjectRepository) CreateUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	return repo.database.WithContext(ctx).Create(update).Error
}

func (repo *ProjectRepository) ListUpdates(ctx context.Context, projectID string) ([]models.ProjectUpdate, error) {
	updates := make([]models.ProjectUpdate, 0)
	if err := repo.database.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (repo *ProjectRepository) CreateImage(ctx context.Context, image *models.ProjectImage) error {
	return repo.database.WithContext(ctx).Create(image).Error
}

func (repo *ProjectRepository) ListImages(ctx context.Context, projectID string) ([]models.ProjectImage, error) {
	images := make([]models.ProjectImage, 0)
	if err := repo.database.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
