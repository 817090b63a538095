package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/models"
	"gorm.io/gorm"
)

// Viewer is the caller a project operation runs on behalf of.
type Viewer struct {
	AccountID string
	Role      models.Role
}

func ViewerFromSession(session *models.Session) Viewer {
	if session == nil {
		return Viewer{}
	}
	return Viewer{AccountID: session.User.ID, Role: session.Role()}
}

type ProjectRepository interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	FindByID(ctx context.Context, projectID string) (models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	UpdateByID(ctx context.Context, projectID string, updates map[string]any) error
	Delete(ctx context.Context, projectID string) error
	CreateUpdate(ctx context.Context, update *models.ProjectUpdate) error
	ListUpdates(ctx context.Context, projectID string) ([]models.ProjectUpdate, error)
	CreateImage(ctx context.Context, image *models.ProjectImage) error
	ListImages(ctx context.Context, projectID string) ([]models.ProjectImage, error)
}

type ProfileLookup interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, error)
}

type ProjectInput struct {
	Title       string
	Description string
	Location    string
	Budget      *float64
	Status      string
}

// ProjectPatch holds optional changes; nil fields are left alone.
type ProjectPatch struct {
	Title       *string
	Description *string
	Location    *string
	Budget      *float64
	Status      *string
}

func (patch ProjectPatch) onlyStatus() bool {
	return patch.Title == nil && patch.Description == nil && patch.Location == nil && patch.Budget == nil
}

type ProjectService struct {
	projects ProjectRepository
	profiles ProfileLookup
	feed     *ProjectFeed
}

func NewProjectService(projects ProjectRepository, profiles ProfileLookup, feed *ProjectFeed) *ProjectService {
	return &ProjectService{projects: projects, profiles: profiles, feed: feed}
}

func (service *ProjectService) ListForViewer(ctx context.Context, viewer Viewer) ([]models.Project, error) {
	var filter models.ProjectFilter
	switch viewer.Role {
	case models.RoleAdmin:
	case models.RoleClient:
		filter.ClientID = viewer.AccountID
	case models.RoleContractor:
		filter.ContractorID = viewer.AccountID
	default:
		return nil, forbiddenError("a role is required to list projects")
	}
	return service.projects.List(ctx, filter)
}

func (service *ProjectService) Create(ctx context.Context, viewer Viewer, input ProjectInput) (models.Project, error) {
	if viewer.Role != models.RoleClient && viewer.Role != models.RoleAdmin {
		return models.Project{}, forbiddenError("only clients and admins can create projects")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Project{}, validationError("title is required")
	}
	if err := validateBudget(input.Budget); err != nil {
		return models.Project{}, err
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.ProjectStatusPending
	}
	if !models.ValidProjectStatus(status) {
		return models.Project{}, validationError("status must be pending, in_progress or completed")
	}

	clientID := viewer.AccountID
	project := models.Project{
		Title:       title,
		Description: normalizeOptionalText(input.Description),
		Location:    normalizeOptionalText(input.Location),
		Budget:      input.Budget,
		Status:      &status,
		ClientID:    &clientID,
	}
	if err := service.projects.Create(ctx, &project); err != nil {
		return models.Project{}, err
	}

	created, err := service.projects.FindByID(ctx, project.ID)
	if err != nil {
		return models.Project{}, err
	}
	service.publish(ctx, ProjectChange{Type: ChangeInsert, Project: created})
	return created, nil
}

// Get hides projects the viewer cannot see behind ErrNotFound.
func (service *ProjectService) Get(ctx context.Context, viewer Viewer, projectID string) (models.Project, error) {
	project, err := service.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, notFoundError("project not found")
		}
		return models.Project{}, err
	}
	if !project.VisibleTo(viewer.Role, viewer.AccountID) {
		return models.Project{}, notFoundError("project not found")
	}
	return project, nil
}

// Update lets admins and the owning client edit every field. The assigned
// contractor may only move the status.
func (service *ProjectService) Update(ctx context.Context, viewer Viewer, projectID string, patch ProjectPatch) (models.Project, error) {
	current, err := service.Get(ctx, viewer, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if viewer.Role == models.RoleContractor && !patch.onlyStatus() {
		return models.Project{}, forbiddenError("contractors can only change the project status")
	}

	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Project{}, validationError("title is required")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = normalizeOptionalText(*patch.Description)
	}
	if patch.Location != nil {
		updates["location"] = normalizeOptionalText(*patch.Location)
	}
	if patch.Budget != nil {
		if err := validateBudget(patch.Budget); err != nil {
			return models.Project{}, err
		}
		updates["budget"] = *patch.Budget
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		if !models.ValidProjectStatus(status) {
			return models.Project{}, validationError("status must be pending, in_progress or completed")
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return current, nil
	}

	return service.applyUpdate(ctx, current, updates)
}

func (service *ProjectService) Delete(ctx context.Context, viewer Viewer, projectID string) error {
	current, err := service.Get(ctx, viewer, projectID)
	if err != nil {
		return err
	}
	if viewer.Role != models.RoleAdmin && !(viewer.Role == models.RoleClient && current.OwnedBy(viewer.AccountID)) {
		return forbiddenError("only admins and the owning client can delete a project")
	}

	if err := service.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("project not found")
		}
		return err
	}
	service.publish(ctx, ProjectChange{Type: ChangeDelete, Project: current})
	return nil
}

// AssignContractor sets or, with an empty contractorID, clears the contractor.
func (service *ProjectService) AssignContractor(ctx context.Context, viewer Viewer, projectID string, contractorID string) (models.Project, error) {
	if viewer.Role != models.RoleAdmin {
		return models.Project{}, forbiddenError("only admins can assign contractors")
	}
	current, err := service.Get(ctx, viewer, projectID)
	if err != nil {
		return models.Project{}, err
	}

	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return service.applyUpdate(ctx, current, map[string]any{"contractor_id": nil})
	}

	profile, err := service.profiles.FindByID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, validationError("contractor not found")
		}
		return models.Project{}, err
	}
	if profile.Role != models.RoleContractor {
		return models.Project{}, validationError("assignee must have the contractor role")
	}
	return service.applyUpdate(ctx, current, map[string]any{"contractor_id": contractorID})
}

func (service *ProjectService) applyUpdate(ctx context.Context, current models.Project, updates map[string]any) (models.Project, error) {
	if err := service.projects.UpdateByID(ctx, current.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, notFoundError("project not found")
		}
		return models.Project{}, err
	}
	updated, err := service.projects.FindByID(ctx, current.ID)
	if err != nil {
		return models.Project{}, err
	}

	previous := current
	service.publish(ctx, ProjectChange{Type: ChangeUpdate, Project: updated, Previous: &previous})
	return updated, nil
}

func (service *ProjectService) AddUpdate(ctx context.Context, viewer Viewer, projectID string, content string) (models.ProjectUpdate, error) {
	project, err := service.Get(ctx, viewer, projectID)
	if err != nil {
		return models.ProjectUpdate{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.ProjectUpdate{}, validationError("content is required")
	}

	update := models.ProjectUpdate{ProjectID: project.ID, Content: content, CreatedBy: viewer.AccountID}
	if err := service.projects.CreateUpdate(ctx, &update); err != nil {
		return models.ProjectUpdate{}, err
	}
	service.publish(ctx, ProjectChange{Type: ChangeUpdate, Project: project})
	return update, nil
}

func (service *ProjectService) ListUpdates(ctx context.Context, viewer Viewer, projectID string) ([]models.ProjectUpdate, error) {
	if _, err := service.Get(ctx, viewer, projectID); err != nil {
		return nil, err
	}
	return service.projects.ListUpdates(ctx, projectID)
}

func (service *ProjectService) AddImage(ctx context.Context, viewer Viewer, projectID string, imageURL string) (models.ProjectImage, error) {
	project, err := service.Get(ctx, viewer, projectID)
	if err != nil {
		return models.ProjectImage{}, err
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return models.ProjectImage{}, validationError("image_url is required")
	}

	image := models.ProjectImage{ProjectID: project.ID, ImageURL: imageURL}
	if err := service.projects.CreateImage(ctx, &image); err != nil {
		return models.ProjectImage{}, err
	}
	service.publish(ctx, ProjectChange{Type: ChangeUpdate, Project: project})
	return image, nil
}

func (service *ProjectService) ListImages(ctx context.Context, viewer Viewer, projectID string) ([]models.ProjectImage, error) {
	if _, err := service.Get(ctx, viewer, projectID); err != nil {
		return nil, err
	}
	return service.projects.ListImages(ctx, projectID)
}

func (service *ProjectService) publish(ctx context.Context, change ProjectChange) {
	if service.feed == nil {
		return
	}
	service.feed.Publish(change)
	logging.FromContext(ctx).Debug("project change published", "type", change.Type, "project_id", change.Project.ID)
}

func validateBudget(budget *float64) error {
	if budget == nil {
		return nil
	}
	if math.IsNaN(*budget) || math.IsInf(*budget, 0) || *budget < 0 {
		return validationError("budget must be zero or more")
	}
	return nil
}
