package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusPending    = "pending"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
)

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	default:
		return false
	}
}

// ProjectFilter narrows a project listing to one client or one contractor.
// The zero value lists everything.
type ProjectFilter struct {
	ClientID     string
	ContractorID string
}

type Project struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	Budget       *float64  `json:"budget"`
	Status       *string   `json:"status"`
	ClientID     *string   `gorm:"index" json:"client_id"`
	ContractorID *string   `gorm:"index" json:"contractor_id"`
	Client       *Profile  `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Contractor   *Profile  `gorm:"foreignKey:ContractorID;references:ID" json:"contractor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (project *Project) BeforeCreate(*gorm.DB) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether accountID is the project's client.
func (project Project) OwnedBy(accountID string) bool {
	return project.ClientID != nil && *project.ClientID == accountID
}

// AssignedTo reports whether accountID is the project's contractor.
func (project Project) AssignedTo(accountID string) bool {
	return project.ContractorID != nil && *project.ContractorID == accountID
}

// VisibleTo mirrors the dashboard filter: admins see everything, clients their
// own projects, contractors the projects assigned to them.
func (project Project) VisibleTo(role Role, accountID string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleClient:
		return project.OwnedBy(accountID)
	case RoleContractor:
		return project.AssignedTo(accountID)
	default:
		return false
	}
}

type ProjectUpdate struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	ProjectID string    `gorm:"not null;index" json:"project_id"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (update *ProjectUpdate) BeforeCreate(*gorm.DB) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	return nil
}

type ProjectImage struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	ProjectID string    `gorm:"not null;index" json:"project_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (image *ProjectImage) BeforeCreate(*gorm.DB) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	return nil
}
